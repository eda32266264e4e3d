package scheduler

func (s *Scheduler) observeAdd() {
	if s.metrics == nil {
		return
	}
	s.metrics.JobsScheduled.WithLabelValues(s.name).Inc()
	s.metrics.JobsActive.WithLabelValues(s.name).Set(float64(len(s.jobs)))
}

func (s *Scheduler) observeRemove() {
	if s.metrics == nil {
		return
	}
	s.metrics.JobsRemoved.WithLabelValues(s.name).Inc()
	s.metrics.JobsActive.WithLabelValues(s.name).Set(float64(len(s.jobs)))
}

func (s *Scheduler) observeFiring() {
	if s.metrics == nil {
		return
	}
	s.metrics.JobFirings.WithLabelValues(s.name).Inc()
}

func (s *Scheduler) observeError(op string) {
	if s.metrics == nil {
		return
	}
	s.metrics.SchedulerErrors.WithLabelValues(s.name, op).Inc()
}
