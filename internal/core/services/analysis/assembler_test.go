package analysis

import (
	"context"
	"testing"

	"github.com/steeraudit/bandsteer/internal/core/domain"
	"github.com/steeraudit/bandsteer/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	records []domain.CaptureRecord
	idx     int
}

func (s *fakeStream) Next(ctx context.Context) (domain.CaptureRecord, bool, error) {
	if s.idx >= len(s.records) {
		return domain.CaptureRecord{}, false, nil
	}
	rec := s.records[s.idx]
	s.idx++
	return rec, true, nil
}

func (s *fakeStream) Close() error { return nil }

type fakeDissector struct {
	records []domain.CaptureRecord
}

func (d *fakeDissector) Run(ctx context.Context, capturePath string) (ports.RecordStream, error) {
	return &fakeStream{records: d.records}, nil
}

func (d *fakeDissector) TotalFrameCount(ctx context.Context, capturePath string) (int, error) {
	return len(d.records) + 5, nil
}

type fakeClassifier struct{}

func (fakeClassifier) Classify(ctx context.Context, mac, filename string, hints domain.UserHints) (domain.DeviceInfo, error) {
	return domain.DeviceInfo{MAC: mac, Vendor: "TestVendor", Category: domain.CategoryMobile, Confidence: 0.5}, nil
}

type fakeStore struct {
	saved *domain.BandSteeringAnalysis
}

func (s *fakeStore) Save(ctx context.Context, a *domain.BandSteeringAnalysis) (string, error) {
	s.saved = a
	return "fake/path.json", nil
}
func (s *fakeStore) Load(ctx context.Context, id string) (*domain.BandSteeringAnalysis, error) {
	return s.saved, nil
}
func (s *fakeStore) Delete(ctx context.Context, id string) error { return nil }

func statusPtr(v int) *int { return &v }

// scenarioARecords mirrors clean-assisted-steering scenario: a BTM
// request/accept followed by a successful reassociation to a 2.4GHz BSSID.
func scenarioARecords() []domain.CaptureRecord {
	client := "11:22:33:44:55:66"
	status0 := 0
	return []domain.CaptureRecord{
		{Timestamp: 1.0, Subtype: domain.SubtypeAction, CategoryCode: domain.CategoryWNM, ActionCode: domain.ActionBTMRequest,
			SA: "aa:aa:aa:aa:aa:aa", DA: client, BSSID: "aa:aa:aa:aa:aa:aa", FrequencyMHz: 5180},
		{Timestamp: 1.2, Subtype: domain.SubtypeAction, CategoryCode: domain.CategoryWNM, ActionCode: domain.ActionBTMResponse,
			SA: client, DA: "aa:aa:aa:aa:aa:aa", BSSID: "aa:aa:aa:aa:aa:aa", BTMStatusCode: &status0, FrequencyMHz: 5180},
		{Timestamp: 1.4, Subtype: domain.SubtypeReassocResponse,
			SA: "bb:bb:bb:bb:bb:bb", DA: client, BSSID: "bb:bb:bb:bb:bb:bb", AssocStatusCode: &status0, FrequencyMHz: 2442},
	}
}

func TestAnalyzeScenarioAProducesSuccessVerdict(t *testing.T) {
	store := &fakeStore{}
	a := New(&fakeDissector{records: scenarioARecords()}, fakeClassifier{}, store, nil, nil)

	result, err := a.Analyze(context.Background(), Request{CapturePath: "/tmp/capture.pcapng"})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.VerdictSuccess, result.Verdict)
	assert.Len(t, result.Transitions, 1)
	assert.Equal(t, domain.SteeringAssisted, result.Transitions[0].Kind)
	assert.Equal(t, 1, result.BTMRequests)
	assert.Equal(t, 1, result.BTMResponses)
	assert.NotEmpty(t, result.AnalysisID)
	assert.Same(t, result, store.saved)
}

func TestAnalyzeScenarioBProducesFailedVerdict(t *testing.T) {
	client := "11:22:33:44:55:66"
	status0 := 0
	records := []domain.CaptureRecord{
		{Timestamp: 10.0, Subtype: domain.SubtypeDeauth, SA: "aa:aa:aa:aa:aa:aa", DA: client, BSSID: "aa:aa:aa:aa:aa:aa", ReasonCode: 5, FrequencyMHz: 5180},
		{Timestamp: 10.3, Subtype: domain.SubtypeReassocResponse, SA: "bb:bb:bb:bb:bb:bb", DA: client, BSSID: "bb:bb:bb:bb:bb:bb", AssocStatusCode: &status0, FrequencyMHz: 2442},
	}

	store := &fakeStore{}
	a := New(&fakeDissector{records: records}, fakeClassifier{}, store, nil, nil)

	result, err := a.Analyze(context.Background(), Request{CapturePath: "/tmp/capture.pcapng"})

	require.NoError(t, err)
	assert.Equal(t, domain.VerdictFailed, result.Verdict)
	require.Len(t, result.Transitions, 1)
	assert.Equal(t, domain.SteeringAggressive, result.Transitions[0].Kind)
}

func TestAnalyzeHonorsClientMACHint(t *testing.T) {
	records := scenarioARecords()
	store := &fakeStore{}
	a := New(&fakeDissector{records: records}, fakeClassifier{}, store, nil, nil)

	result, err := a.Analyze(context.Background(), Request{
		CapturePath: "/tmp/capture.pcapng",
		Hints:       domain.UserHints{ClientMAC: "11:22:33:44:55:66"},
	})

	require.NoError(t, err)
	assert.Equal(t, "11:22:33:44:55:66", result.Devices[0].MAC)
}
