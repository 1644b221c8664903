package scheduler

import "sort"

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		Enabled:  s.cfg.Enabled,
		Running:  s.c != nil,
		Timezone: s.cfg.Timezone,
	}
	for _, d := range s.defs {
		info := ScheduleInfo{ID: d.id, Name: d.name, Spec: d.spec, Timeout: d.timeout}
		if s.c != nil && d.entryID != 0 {
			e := s.c.Entry(d.entryID)
			info.Next, info.Prev = e.Next, e.Prev
		}
		snap.Schedules = append(snap.Schedules, info)
	}
	s.mu.Unlock()

	s.tmu.Lock()
	for name := range s.timers {
		snap.Pending = append(snap.Pending, name)
	}
	s.tmu.Unlock()

	sort.Slice(snap.Schedules, func(i, j int) bool { return snap.Schedules[i].Name < snap.Schedules[j].Name })
	sort.Strings(snap.Pending)
	return snap
}
