package scheduler

import "github.com/kilianp07/batchflow/core/factory"

var registry = factory.NewRegistry[Scheduler]()

func init() {
	_ = Register("simple", func(conf map[string]any) (Scheduler, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewSimpleScheduler(c)
	})
	_ = Register("capacity", func(conf map[string]any) (Scheduler, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewCapacityScheduler(c)
	})
	_ = Register("round_robin", func(conf map[string]any) (Scheduler, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewRoundRobinScheduler(c)
	})
}

// Register adds a scheduler policy identified by name.
func Register(name string, f factory.Factory[Scheduler]) error {
	return registry.Register(name, f)
}

// New builds the scheduler described by cfg. An empty type selects "simple".
func New(cfg factory.ModuleConfig) (Scheduler, error) {
	if cfg.Type == "" {
		cfg.Type = "simple"
	}
	return registry.Create(cfg)
}
