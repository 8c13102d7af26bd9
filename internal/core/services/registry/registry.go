// Package registry implements the report registry: listing,
// retrieval, deletion and aggregate statistics over every saved analysis,
// plus the per-report time-in-band computation.
package registry

import (
	"context"
	"sort"

	"github.com/steeraudit/bandsteer/internal/core/domain"
	"github.com/steeraudit/bandsteer/internal/core/ports"
)

// Registry composes the authoritative JSON store with its secondary index
// to serve list/get/delete/stats queries without re-deriving them from
// scratch on every call.
type Registry struct {
	Store ports.AnalysisStore
	Index ports.AnalysisIndex
}

// New builds a Registry over the given store and index.
func New(store ports.AnalysisStore, index ports.AnalysisIndex) *Registry {
	return &Registry{Store: store, Index: index}
}

// ListAll returns every indexed analysis summary, newest first.
func (r *Registry) ListAll(ctx context.Context) ([]ports.AnalysisSummary, error) {
	return r.Index.List(ctx, ports.ListFilter{})
}

// List returns indexed analysis summaries matching filter, newest first.
func (r *Registry) List(ctx context.Context, filter ports.ListFilter) ([]ports.AnalysisSummary, error) {
	return r.Index.List(ctx, filter)
}

// GetByID loads the full artifact for one analysis.
func (r *Registry) GetByID(ctx context.Context, id string) (*domain.BandSteeringAnalysis, error) {
	return r.Store.Load(ctx, id)
}

// DeleteByID removes one analysis from both the JSON tree and the index.
func (r *Registry) DeleteByID(ctx context.Context, id string) error {
	if err := r.Store.Delete(ctx, id); err != nil {
		return err
	}
	return r.Index.Remove(ctx, id)
}

// DeleteByVendor removes every analysis attributed to vendor.
func (r *Registry) DeleteByVendor(ctx context.Context, vendor string) (int, error) {
	summaries, err := r.Index.List(ctx, ports.ListFilter{Vendor: vendor})
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, s := range summaries {
		if err := r.DeleteByID(ctx, s.AnalysisID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// DeleteBatch removes exactly the given analysis IDs.
func (r *Registry) DeleteBatch(ctx context.Context, ids []string) (int, error) {
	deleted := 0
	for _, id := range ids {
		if err := r.DeleteByID(ctx, id); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// DeleteAll removes every analysis in the registry.
func (r *Registry) DeleteAll(ctx context.Context) (int, error) {
	summaries, err := r.Index.List(ctx, ports.ListFilter{})
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, s := range summaries {
		if err := r.DeleteByID(ctx, s.AnalysisID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// Stats computes aggregate statistics across every indexed analysis: counts
// by verdict, per-vendor counts, the latest capture timestamp and a success
// rate. The domain's Verdict type is the closed three-value set
// {SUCCESS, PARTIAL, FAILED} — success rate here is simply successes over
// total, not a finer-grained scale.
func (r *Registry) Stats(ctx context.Context) (Summary, error) {
	base, err := r.Index.Stats(ctx)
	if err != nil {
		return Summary{}, err
	}

	all, err := r.Index.List(ctx, ports.ListFilter{})
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{RegistryStats: base}
	for _, s := range all {
		if s.TimestampMS > summary.LatestCaptureMS {
			summary.LatestCaptureMS = s.TimestampMS
		}
	}
	if base.TotalAnalyses > 0 {
		summary.SuccessRate = float64(base.SuccessCount) / float64(base.TotalAnalyses)
	}
	summary.TopVendors = topVendors(base.VendorCounts, 5)

	return summary, nil
}

// Summary wraps the raw index stats with derived fields the CLI/report
// surface needs directly.
type Summary struct {
	ports.RegistryStats
	LatestCaptureMS int64
	SuccessRate     float64
	TopVendors      []VendorCount
}

// VendorCount is one entry of the top-vendors ranking.
type VendorCount struct {
	Vendor string
	Count  int
}

func topVendors(counts map[string]int, n int) []VendorCount {
	ranked := make([]VendorCount, 0, len(counts))
	for vendor, count := range counts {
		ranked = append(ranked, VendorCount{Vendor: vendor, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Vendor < ranked[j].Vendor
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// timePeriod is one (start, end) interval in the same epoch-seconds timebase
// as the frames' timestamps.
type timePeriod struct {
	start, end float64
}

// TimeInBand computes (time_2_4ghz, time_5ghz, transition_times) for one
// analysis. It groups consecutive same-band signal samples
// into continuous intervals, breaking on a >5s gap or a band change,
// subtracts any overlap with transition windows so transition time is never
// double-counted, and scales band time down proportionally if band time
// plus transition time overruns the real capture time span by more than 10%.
func TimeInBand(analysis *domain.BandSteeringAnalysis) (time24, time5 float64, transitionTimes []float64) {
	transitions := bandChangeTransitions(analysis.Transitions)

	var periods []timePeriod
	for _, t := range transitions {
		if t.EndTime > t.StartTime {
			periods = append(periods, timePeriod{start: t.StartTime, end: t.EndTime})
			transitionTimes = append(transitionTimes, t.EndTime-t.StartTime)
		}
	}

	samples := bandSamples(analysis.SignalSamples)
	if len(samples) == 0 {
		return 0, 0, transitionTimes
	}

	totalTime := samples[len(samples)-1].Timestamp - samples[0].Timestamp
	if totalTime <= 0 {
		return 0, 0, transitionTimes
	}

	i := 0
	for i < len(samples) {
		band := samples[i].Band
		start := samples[i].Timestamp
		end := start
		j := i + 1
		for j < len(samples) {
			next := samples[j]
			if next.Band != band || withinAnyPeriod(next.Timestamp, periods) {
				break
			}
			if next.Timestamp-end > 5.0 {
				break
			}
			end = next.Timestamp
			j++
		}

		duration := end - start
		for _, p := range periods {
			if start < p.end && end > p.start {
				overlapStart := max(start, p.start)
				overlapEnd := min(end, p.end)
				duration -= overlapEnd - overlapStart
			}
		}

		if duration > 0 {
			switch band {
			case domain.Band24GHz:
				time24 += duration
			case domain.Band5GHz:
				time5 += duration
			}
		}

		i = j
	}

	totalTransitionTime := 0.0
	for _, d := range transitionTimes {
		totalTransitionTime += d
	}
	expectedTotal := totalTime - totalTransitionTime
	bandTotal := time24 + time5
	if expectedTotal > 0 && bandTotal+totalTransitionTime > totalTime*1.1 {
		scale := expectedTotal / bandTotal
		time24 *= scale
		time5 *= scale
	}

	return time24, time5, transitionTimes
}

func bandChangeTransitions(transitions []domain.SteeringTransition) []domain.SteeringTransition {
	var out []domain.SteeringTransition
	for _, t := range transitions {
		if t.IsSuccessful && t.IsBandChange && t.FromBand != domain.BandUnknown && t.ToBand != domain.BandUnknown && t.FromBand != t.ToBand {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

func bandSamples(samples []domain.SignalSample) []domain.SignalSample {
	var out []domain.SignalSample
	for _, s := range samples {
		if s.Band == domain.Band24GHz || s.Band == domain.Band5GHz {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

func withinAnyPeriod(ts float64, periods []timePeriod) bool {
	for _, p := range periods {
		if ts >= p.start && ts <= p.end {
			return true
		}
	}
	return false
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
