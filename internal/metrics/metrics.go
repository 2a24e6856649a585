package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"cpop-ledger/internal/core/domain"
)

// Ledger holds the counters the campaign engine updates.
type Ledger struct {
	CampaignsCreated  prometheus.Counter
	Distributions     prometheus.Counter
	TokensDistributed prometheus.Counter
	StatusChanges     *prometheus.CounterVec
	Rejections        *prometheus.CounterVec
}

// NewLedger registers the ledger metrics on reg. A nil reg yields metrics
// that are tracked but never exported.
func NewLedger(reg prometheus.Registerer) *Ledger {
	f := promauto.With(reg)
	return &Ledger{
		CampaignsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "cpop_campaigns_created_total",
			Help: "campaigns created",
		}),
		Distributions: f.NewCounter(prometheus.CounterOpts{
			Name: "cpop_distributions_total",
			Help: "committed token distributions",
		}),
		TokensDistributed: f.NewCounter(prometheus.CounterOpts{
			Name: "cpop_tokens_distributed_total",
			Help: "base units moved out of campaign pools",
		}),
		StatusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cpop_status_changes_total",
			Help: "campaign status transitions by target status",
		}, []string{"status"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cpop_rejections_total",
			Help: "failed operations by operation and error code",
		}, []string{"op", "code"}),
	}
}

// Reject counts a failed operation under err's code.
func (l *Ledger) Reject(op string, err error) {
	if l == nil || err == nil {
		return
	}
	l.Rejections.WithLabelValues(op, string(domain.CodeOf(err))).Inc()
}
