package workerpool

import "time"

func (p *Pool[Req, Res]) setGauge() {
	m := p.config.Metrics
	if m == nil {
		return
	}
	m.WorkerPoolSize.WithLabelValues(p.config.Name).Set(float64(p.config.Workers))
	m.WorkerPoolActive.WithLabelValues(p.config.Name).Set(float64(p.active.Load()))
}

func (p *Pool[Req, Res]) record(d time.Duration, err error) {
	m := p.config.Metrics
	if m == nil {
		return
	}
	m.TransformDuration.WithLabelValues(p.config.Name).Observe(d.Seconds())
	if err != nil {
		m.ItemsFailed.WithLabelValues(p.config.Name).Inc()
	} else {
		m.ItemsProcessed.WithLabelValues(p.config.Name).Inc()
	}
	m.WorkerPoolActive.WithLabelValues(p.config.Name).Set(float64(p.active.Load()))
}
