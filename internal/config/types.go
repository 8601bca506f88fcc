package config

import "time"

// Policy is the diagnostic policy: thresholds, budgets and what counts as a
// failure. Zero values are filled from Default when a file omits them.
type Policy struct {
	QueryTimeout   time.Duration `yaml:"query_timeout"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	Stability      Stability     `yaml:"stability"`
	Pressure       Pressure      `yaml:"pressure"`
	PoolingParams  []string      `yaml:"pooling_params"`
	TCPPrecheck    bool          `yaml:"tcp_precheck"`
	FailOnDegraded bool          `yaml:"fail_on_degraded"`
	MaxParallel    int           `yaml:"max_parallel"`
	RequirePooling bool          `yaml:"require_pooling"`
	RequireTLS     bool          `yaml:"require_tls"`
}

type Stability struct {
	Repetitions int           `yaml:"repetitions"`
	Interval    time.Duration `yaml:"interval"`
}

type Pressure struct {
	WarnRatio  float64 `yaml:"warn_ratio"`
	ErrorRatio float64 `yaml:"error_ratio"` // 0 disables escalation
}
