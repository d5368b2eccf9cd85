// Package factory instantiates pluggable modules (scheduler policies, metrics
// sinks) from configuration. A module is described by a type name and a map of
// raw settings; registered factories decode the settings into typed structs.
//
//	reg := factory.NewRegistry[scheduler.Scheduler]()
//	_ = reg.Register("simple", func(conf map[string]any) (scheduler.Scheduler, error) {
//	    var c scheduler.Config
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return scheduler.NewSimpleScheduler(c)
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "simple", Conf: map[string]any{"batch_size": 64}})
package factory
