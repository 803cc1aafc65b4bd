package token

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dingauth_token_cache_lookups_total",
		Help: "Access token cache lookups by result (hit, miss)",
	}, []string{"result"})
	refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dingauth_token_refreshes_total",
		Help: "Access token refreshes against DingTalk by outcome",
	}, []string{"outcome"})
	invalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dingauth_token_invalidations_total",
		Help: "Cached access tokens dropped after the provider rejected them",
	})
)
