package metrics

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Metrics struct {
	startTime time.Time

	requestsTotal   atomic.Int64
	requestsSuccess atomic.Int64
	requestsFailed  atomic.Int64

	intentsMatched   atomic.Int64
	intentsUnmatched atomic.Int64

	skillRunsTotal   atomic.Int64
	skillRunsSuccess atomic.Int64
	skillRunsFailed  atomic.Int64
	skillTimeouts    atomic.Int64

	turnsPersisted atomic.Int64

	responseTimes     []time.Duration
	responseTimesLock sync.Mutex

	skillCalls map[string]*atomic.Int64
	skillLock  sync.Mutex
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

func Default() *Metrics {
	once.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}

func New() *Metrics {
	return &Metrics{
		startTime:     time.Now(),
		responseTimes: make([]time.Duration, 0, 1000),
		skillCalls:    make(map[string]*atomic.Int64),
	}
}

func (m *Metrics) RecordRequest(success bool) {
	m.requestsTotal.Add(1)
	if success {
		m.requestsSuccess.Add(1)
	} else {
		m.requestsFailed.Add(1)
	}
}

func (m *Metrics) RecordIntent(matched bool) {
	if matched {
		m.intentsMatched.Add(1)
	} else {
		m.intentsUnmatched.Add(1)
	}
}

func (m *Metrics) RecordSkillRun(skill string, success bool) {
	m.skillRunsTotal.Add(1)
	if success {
		m.skillRunsSuccess.Add(1)
	} else {
		m.skillRunsFailed.Add(1)
	}

	m.skillLock.Lock()
	defer m.skillLock.Unlock()

	if m.skillCalls[skill] == nil {
		m.skillCalls[skill] = &atomic.Int64{}
	}
	m.skillCalls[skill].Add(1)
}

func (m *Metrics) RecordSkillTimeout(skill string) {
	m.skillTimeouts.Add(1)
	m.RecordSkillRun(skill, false)
}

func (m *Metrics) RecordTurnPersisted() {
	m.turnsPersisted.Add(1)
}

func (m *Metrics) RecordResponseTime(d time.Duration) {
	m.responseTimesLock.Lock()
	defer m.responseTimesLock.Unlock()

	m.responseTimes = append(m.responseTimes, d)
	if len(m.responseTimes) > 1000 {
		m.responseTimes = m.responseTimes[1:]
	}
}

type Snapshot struct {
	Uptime           time.Duration    `json:"uptime"`
	RequestsTotal    int64            `json:"requests_total"`
	RequestsSuccess  int64            `json:"requests_success"`
	RequestsFailed   int64            `json:"requests_failed"`
	IntentsMatched   int64            `json:"intents_matched"`
	IntentsUnmatched int64            `json:"intents_unmatched"`
	SkillRunsTotal   int64            `json:"skill_runs_total"`
	SkillRunsSuccess int64            `json:"skill_runs_success"`
	SkillRunsFailed  int64            `json:"skill_runs_failed"`
	SkillTimeouts    int64            `json:"skill_timeouts"`
	TurnsPersisted   int64            `json:"turns_persisted"`
	AvgResponseTime  time.Duration    `json:"avg_response_time"`
	P99ResponseTime  time.Duration    `json:"p99_response_time"`
	SkillCalls       map[string]int64 `json:"skill_calls"`
	SuccessRate      float64          `json:"success_rate"`
}

func (m *Metrics) Snapshot() *Snapshot {
	s := &Snapshot{
		Uptime:           time.Since(m.startTime),
		RequestsTotal:    m.requestsTotal.Load(),
		RequestsSuccess:  m.requestsSuccess.Load(),
		RequestsFailed:   m.requestsFailed.Load(),
		IntentsMatched:   m.intentsMatched.Load(),
		IntentsUnmatched: m.intentsUnmatched.Load(),
		SkillRunsTotal:   m.skillRunsTotal.Load(),
		SkillRunsSuccess: m.skillRunsSuccess.Load(),
		SkillRunsFailed:  m.skillRunsFailed.Load(),
		SkillTimeouts:    m.skillTimeouts.Load(),
		TurnsPersisted:   m.turnsPersisted.Load(),
		SkillCalls:       make(map[string]int64),
	}

	if s.RequestsTotal > 0 {
		s.SuccessRate = float64(s.RequestsSuccess) / float64(s.RequestsTotal) * 100
	}

	m.responseTimesLock.Lock()
	if len(m.responseTimes) > 0 {
		var total time.Duration
		for _, rt := range m.responseTimes {
			total += rt
		}
		s.AvgResponseTime = total / time.Duration(len(m.responseTimes))

		sorted := make([]time.Duration, len(m.responseTimes))
		copy(sorted, m.responseTimes)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		p99Index := int(float64(len(sorted)) * 0.99)
		if p99Index >= len(sorted) {
			p99Index = len(sorted) - 1
		}
		s.P99ResponseTime = sorted[p99Index]
	}
	m.responseTimesLock.Unlock()

	m.skillLock.Lock()
	for k, v := range m.skillCalls {
		s.SkillCalls[k] = v.Load()
	}
	m.skillLock.Unlock()

	return s
}

func (m *Metrics) Prometheus() string {
	var sb strings.Builder

	sb.WriteString("# HELP metoolok_uptime_seconds Time since process start\n")
	sb.WriteString("# TYPE metoolok_uptime_seconds gauge\n")
	sb.WriteString("metoolok_uptime_seconds " + strconv.FormatInt(int64(time.Since(m.startTime).Seconds()), 10) + "\n\n")

	sb.WriteString("# HELP metoolok_requests_total Total number of processed inputs\n")
	sb.WriteString("# TYPE metoolok_requests_total counter\n")
	sb.WriteString("metoolok_requests_total " + strconv.FormatInt(m.requestsTotal.Load(), 10) + "\n\n")

	sb.WriteString("# HELP metoolok_requests_success Inputs answered by a skill\n")
	sb.WriteString("# TYPE metoolok_requests_success counter\n")
	sb.WriteString("metoolok_requests_success " + strconv.FormatInt(m.requestsSuccess.Load(), 10) + "\n\n")

	sb.WriteString("# HELP metoolok_requests_failed Inputs that ended in an error message\n")
	sb.WriteString("# TYPE metoolok_requests_failed counter\n")
	sb.WriteString("metoolok_requests_failed " + strconv.FormatInt(m.requestsFailed.Load(), 10) + "\n\n")

	sb.WriteString("# HELP metoolok_intents_unmatched Inputs matching no registered keyword\n")
	sb.WriteString("# TYPE metoolok_intents_unmatched counter\n")
	sb.WriteString("metoolok_intents_unmatched " + strconv.FormatInt(m.intentsUnmatched.Load(), 10) + "\n\n")

	sb.WriteString("# HELP metoolok_skill_timeouts_total Skill executions cancelled by deadline\n")
	sb.WriteString("# TYPE metoolok_skill_timeouts_total counter\n")
	sb.WriteString("metoolok_skill_timeouts_total " + strconv.FormatInt(m.skillTimeouts.Load(), 10) + "\n\n")

	sb.WriteString("# HELP metoolok_turns_persisted_total Conversation turns written to the context store\n")
	sb.WriteString("# TYPE metoolok_turns_persisted_total counter\n")
	sb.WriteString("metoolok_turns_persisted_total " + strconv.FormatInt(m.turnsPersisted.Load(), 10) + "\n\n")

	m.skillLock.Lock()
	for skill, count := range m.skillCalls {
		sb.WriteString("# HELP metoolok_skill_runs_total Runs per skill\n")
		sb.WriteString("# TYPE metoolok_skill_runs_total counter\n")
		sb.WriteString("metoolok_skill_runs_total{skill=\"" + skill + "\"} " + strconv.FormatInt(count.Load(), 10) + "\n\n")
	}
	m.skillLock.Unlock()

	return sb.String()
}

func RecordRequest(success bool) {
	Default().RecordRequest(success)
}

func RecordIntent(matched bool) {
	Default().RecordIntent(matched)
}

func RecordSkillRun(skill string, success bool) {
	Default().RecordSkillRun(skill, success)
}

func RecordSkillTimeout(skill string) {
	Default().RecordSkillTimeout(skill)
}

func RecordTurnPersisted() {
	Default().RecordTurnPersisted()
}

func RecordResponseTime(d time.Duration) {
	Default().RecordResponseTime(d)
}
