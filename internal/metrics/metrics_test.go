package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInteractionsTotal_ByKind(t *testing.T) {
	before := testutil.ToFloat64(InteractionsTotal.WithLabelValues("like"))
	InteractionsTotal.WithLabelValues("like").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(InteractionsTotal.WithLabelValues("like")))
}

func TestMatchesTotal(t *testing.T) {
	before := testutil.ToFloat64(MatchesTotal)
	MatchesTotal.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(MatchesTotal))
}
