// Package analysis assembles one complete BandSteeringAnalysis artifact by
// wiring the dissector, classifier, aggregator, primary-client selector,
// steering state machine and compliance evaluator together, then persists
// the result. It owns no business rules of its own beyond the
// glue: synchronizing counters, computing the wireshark_compare diagnostic,
// and recording the analysis_duration_ms.
package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/steeraudit/bandsteer/internal/core/domain"
	"github.com/steeraudit/bandsteer/internal/core/ports"
	"github.com/steeraudit/bandsteer/internal/core/services/aggregator"
	"github.com/steeraudit/bandsteer/internal/core/services/compliance"
	"github.com/steeraudit/bandsteer/internal/core/services/selector"
	"github.com/steeraudit/bandsteer/internal/core/services/steering"
)

var tracer = otel.Tracer("bandsteer/analysis")

// maxSignalSamples bounds the persisted signal_samples array.
const maxSignalSamples = 500

// Request is one capture analysis request.
type Request struct {
	CapturePath string
	Hints       domain.UserHints
}

// Assembler wires every analysis component together behind the ports the
// rest of the system depends on.
type Assembler struct {
	Dissector  ports.Dissector
	Classifier ports.DeviceClassifier
	Store      ports.AnalysisStore
	Index      ports.AnalysisIndex
	Narrative  ports.NarrativeGenerator
}

// New builds an Assembler from its port dependencies.
func New(dissector ports.Dissector, classifier ports.DeviceClassifier, store ports.AnalysisStore, index ports.AnalysisIndex, narrative ports.NarrativeGenerator) *Assembler {
	return &Assembler{Dissector: dissector, Classifier: classifier, Store: store, Index: index, Narrative: narrative}
}

// Analyze runs the full pipeline for one capture and persists the result.
func (a *Assembler) Analyze(ctx context.Context, req Request) (*domain.BandSteeringAnalysis, error) {
	ctx, rootSpan := tracer.Start(ctx, "bandsteer.analyze", trace.WithAttributes(
		attribute.String("capture.filename", filepath.Base(req.CapturePath)),
	))
	defer rootSpan.End()

	start := time.Now()

	totalFrames, err := a.Dissector.TotalFrameCount(ctx, req.CapturePath)
	if err != nil {
		rootSpan.RecordError(err)
		return nil, fmt.Errorf("counting total frames: %w", err)
	}

	result, err := a.dissectAndAggregate(ctx, req.CapturePath)
	if err != nil {
		rootSpan.RecordError(err)
		return nil, err
	}

	primaryMAC, hintWarning := selectPrimaryClient(result, req.Hints.ClientMAC)

	_, classifySpan := tracer.Start(ctx, "bandsteer.classify")
	device, err := a.Classifier.Classify(ctx, primaryMAC, filepath.Base(req.CapturePath), req.Hints)
	classifySpan.End()
	if err != nil {
		rootSpan.RecordError(err)
		return nil, fmt.Errorf("classifying device: %w", err)
	}

	btmEvents := buildBTMEvents(result.Events, primaryMAC)
	samples := downsample(filterSamplesByClient(result.Samples, primaryMAC), maxSignalSamples)

	_, steeringSpan := tracer.Start(ctx, "bandsteer.steering_and_compliance")
	steeringResult := steering.Run(result.Events)
	transitions := filterTransitionsByClient(steeringResult.Transitions, primaryMAC)
	forcedToClient := steering.ForcedToClientCount(result.Events, primaryMAC)

	checks, verdict := compliance.Evaluate(result.Stats, transitions, forcedToClient)
	steeringSpan.SetAttributes(attribute.String("verdict", string(verdict)))
	steeringSpan.End()

	successfulTransitions := len(transitions)
	if result.Stats.BTMAcceptCount > successfulTransitions {
		successfulTransitions = result.Stats.BTMAcceptCount
	}
	failedTransitions := len(result.Stats.AssocFailures)
	loopsDetected := countLoops(transitions)

	btmSuccessRate := 0.0
	if result.Stats.BTMResponses > 0 {
		btmSuccessRate = float64(result.Stats.BTMAcceptCount) / float64(result.Stats.BTMResponses)
	}

	narrativeText := a.generateNarrative(ctx, verdict)

	result.Stats.TotalPackets = totalFrames

	artifact := &domain.BandSteeringAnalysis{
		AnalysisID:         uuid.NewString(),
		Filename:           filepath.Base(req.CapturePath),
		AnalysisTimestamp:  start.UTC(),
		TotalPackets:       totalFrames,
		WLANPackets:        result.Stats.WLANPackets,
		AnalysisDurationMS: time.Since(start).Milliseconds(),

		Devices: []domain.DeviceInfo{device},

		BTMEvents:     btmEvents,
		Transitions:   transitions,
		SignalSamples: samples,

		BTMRequests:    result.Stats.BTMRequests,
		BTMResponses:   result.Stats.BTMResponses,
		BTMSuccessRate: btmSuccessRate,

		SuccessfulTransitions: successfulTransitions,
		FailedTransitions:     failedTransitions,
		LoopsDetected:         loopsDetected,

		KVRSupport: result.Stats.KVR,

		ComplianceChecks: checks,
		Verdict:          verdict,

		RawStats: result.Stats,

		WiresharkCompare: computeWiresharkCompare(result.Stats, successfulTransitions, totalFrames),

		OriginalFilePath: req.CapturePath,
		AnalysisText:     narrativeText,
	}

	if hintWarning {
		artifact.WiresharkCompare = append(artifact.WiresharkCompare, domain.CounterMismatch{
			Field:    "client_mac_hint",
			Severity: domain.MismatchWarning,
			Note:     "the supplied client MAC hint matches a known BSSID; using it for attribution anyway per user intent",
		})
	}

	_, persistSpan := tracer.Start(ctx, "bandsteer.persist")
	defer persistSpan.End()

	if _, err := a.Store.Save(ctx, artifact); err != nil {
		persistSpan.RecordError(err)
		return nil, fmt.Errorf("persisting analysis: %w", err)
	}

	if a.Index != nil {
		summary := ports.AnalysisSummary{
			AnalysisID:  artifact.AnalysisID,
			Filename:    artifact.Filename,
			Vendor:      device.Vendor,
			Model:       stringOrEmpty(device.Model),
			Verdict:     verdict,
			TimestampMS: artifact.AnalysisTimestamp.UnixMilli(),
		}
		if err := a.Index.Upsert(ctx, summary); err != nil {
			persistSpan.RecordError(err)
			return nil, fmt.Errorf("indexing analysis: %w", err)
		}
	}

	return artifact, nil
}

// dissectAndAggregate streams the capture through the dissector and folds
// every record into a single aggregator pass, wrapped in its own span since
// it dominates analysis wall-clock time.
func (a *Assembler) dissectAndAggregate(ctx context.Context, capturePath string) (aggregator.Result, error) {
	ctx, span := tracer.Start(ctx, "bandsteer.dissect_and_aggregate")
	defer span.End()

	stream, err := a.Dissector.Run(ctx, capturePath)
	if err != nil {
		span.RecordError(err)
		return aggregator.Result{}, fmt.Errorf("starting dissector: %w", err)
	}
	defer stream.Close()

	agg := aggregator.New()
	frameCount := 0
	for {
		rec, ok, streamErr := stream.Next(ctx)
		if streamErr != nil {
			span.RecordError(streamErr)
			return aggregator.Result{}, fmt.Errorf("reading capture: %w", streamErr)
		}
		if !ok {
			break
		}
		agg.Process(rec)
		frameCount++
	}

	span.SetAttributes(attribute.Int("frames.processed", frameCount))
	return agg.Finish(), nil
}

func (a *Assembler) generateNarrative(ctx context.Context, verdict domain.Verdict) string {
	if a.Narrative == nil {
		return ""
	}
	text, err := a.Narrative.Generate(ctx, &domain.BandSteeringAnalysis{Verdict: verdict})
	if err != nil {
		return ""
	}
	return text
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// selectPrimaryClient builds weighted evidence from the aggregated events
// and samples, then resolves the primary client MAC (C4).
func selectPrimaryClient(result aggregator.Result, hint string) (mac string, hintIsBSSIDWarning bool) {
	bssids := make(map[string]struct{}, len(result.BSSIDs))
	for b := range result.BSSIDs {
		bssids[strings.ToLower(b)] = struct{}{}
	}

	evidence := selector.NewEvidence(bssids)
	for _, ev := range result.Events {
		switch ev.Kind {
		case aggregator.EventBTMResponse:
			evidence.ObserveBTMResponse(ev.ClientMAC)
		case aggregator.EventAssocRequest, aggregator.EventReassocRequest:
			evidence.ObserveAssocRequest(ev.ClientMAC)
		default:
			evidence.ObserveOther(ev.ClientMAC)
		}
	}
	for _, sample := range result.Samples {
		evidence.ObserveRSSISample(sample.SA)
	}
	for mac, count := range result.Stats.TopSources {
		evidence.ObserveOtherN(mac, count)
	}

	selection := evidence.Select(hint)
	return selection.ClientMAC, selection.HintBSSIDWarning
}

func buildBTMEvents(events []aggregator.SteeringEvent, clientMAC string) []domain.BTMEvent {
	client := strings.ToLower(clientMAC)
	var btm []domain.BTMEvent
	for _, ev := range events {
		var eventType domain.BTMEventType
		switch ev.Kind {
		case aggregator.EventBTMRequest:
			eventType = domain.BTMEventRequest
		case aggregator.EventBTMResponse:
			eventType = domain.BTMEventResponse
		default:
			continue
		}
		if strings.ToLower(ev.ClientMAC) != client {
			continue
		}
		btm = append(btm, domain.BTMEvent{
			Timestamp:  ev.Timestamp,
			EventType:  eventType,
			ClientMAC:  ev.ClientMAC,
			APBSSID:    ev.APBSSID,
			StatusCode: ev.StatusCode,
			Band:       ev.Band,
			Frequency:  ev.Frequency,
			RSSI:       ev.RSSI,
		})
	}
	return btm
}

func filterSamplesByClient(samples []domain.SignalSample, clientMAC string) []domain.SignalSample {
	client := strings.ToLower(clientMAC)
	var filtered []domain.SignalSample
	for _, s := range samples {
		if strings.ToLower(s.SA) == client {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func filterTransitionsByClient(transitions []domain.SteeringTransition, clientMAC string) []domain.SteeringTransition {
	client := strings.ToLower(clientMAC)
	var filtered []domain.SteeringTransition
	for _, t := range transitions {
		if strings.ToLower(t.ClientMAC) == client {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// downsample uniformly thins samples to at most n points, always keeping
// the first and last sample for a representative time span.
func downsample(samples []domain.SignalSample, n int) []domain.SignalSample {
	if len(samples) <= n {
		return samples
	}
	step := float64(len(samples)) / float64(n)
	out := make([]domain.SignalSample, 0, n)
	for i := 0; i < n; i++ {
		idx := int(float64(i) * step)
		if idx >= len(samples) {
			idx = len(samples) - 1
		}
		out = append(out, samples[idx])
	}
	if len(out) > 0 {
		out[len(out)-1] = samples[len(samples)-1]
	}
	return out
}

func countLoops(transitions []domain.SteeringTransition) int {
	count := 0
	for _, t := range transitions {
		if t.ReturnedToOriginal {
			count++
		}
	}
	return count
}

// computeWiresharkCompare enumerates disagreements between raw C5 counters
// and the post-processed (derived) values the rest of the pipeline produced.
func computeWiresharkCompare(stats domain.RawStats, successfulTransitions, totalFrames int) []domain.CounterMismatch {
	var mismatches []domain.CounterMismatch

	if stats.BTMAcceptCount > successfulTransitions {
		mismatches = append(mismatches, domain.CounterMismatch{
			Field: "successful_transitions", Raw: stats.BTMAcceptCount, Derived: successfulTransitions,
			Severity: domain.MismatchError, Note: "derived successful transitions fell below the raw BTM accept count",
		})
	}
	if totalFrames < stats.WLANPackets {
		mismatches = append(mismatches, domain.CounterMismatch{
			Field: "wlan_packets", Raw: totalFrames, Derived: stats.WLANPackets,
			Severity: domain.MismatchWarning, Note: "dissector's 802.11 frame stream reported more frames than the unfiltered frame count",
		})
	}
	if len(stats.FreqBandMismatches) > 0 {
		mismatches = append(mismatches, domain.CounterMismatch{
			Field: "freq_band_map", Raw: len(stats.FreqBandMismatches), Derived: 0,
			Severity: domain.MismatchWarning, Note: "one or more frequencies mapped to conflicting bands within the capture",
		})
	}

	sort.Slice(mismatches, func(i, j int) bool { return mismatches[i].Field < mismatches[j].Field })
	return mismatches
}
