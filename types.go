package hotpath

import (
	"github.com/discochess/hotpath/internal/analysis"
	"github.com/discochess/hotpath/internal/registry"
	"github.com/discochess/hotpath/internal/words"
)

// Report is a point-in-time snapshot of all recorded metrics.
type Report = registry.Report

// MethodStats is the reported state of one timed method.
type MethodStats = registry.MethodStats

// EndpointStats is the reported request count of one endpoint.
type EndpointStats = registry.EndpointStats

// Analysis is the hot-path analysis of a Report.
type Analysis = analysis.HotPathAnalysis

// MethodImpact is one method's average time multiplied by its call count.
type MethodImpact = analysis.MethodImpact

// Recommendation is one optimization finding.
type Recommendation = analysis.Recommendation

// CacheStats describes an in-memory word index.
type CacheStats = words.CacheStats

// NoWordToday is returned by WordOfTheDay when the day index is past the
// end of the word list.
const NoWordToday = words.NoWordToday
