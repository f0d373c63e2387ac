package metrics

// NoopMetrics is a no-operation implementation of Recorder
// All methods are empty and do nothing, providing zero overhead when metrics are disabled
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordBind(kind string, allowed bool)             {}
func (n *NoopMetrics) RecordSearch(kind string, allowed bool)           {}
func (n *NoopMetrics) RecordAccountLocked()                             {}
func (n *NoopMetrics) RecordDatabaseQueryError(operation string)        {}
func (n *NoopMetrics) SetDirectoryCounts(users, services, groups int64) {}
