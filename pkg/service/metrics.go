package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fallbackRepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensebridge_fallback_replies_total",
			Help: "Reply variants served from the fallback bank instead of the model",
		},
		[]string{"user_lang", "tone"},
	)

	translationSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensebridge_translation_skipped_total",
			Help: "Translations answered without a model call (same language or AUTO target)",
		},
		[]string{"endpoint"},
	)

	emptyTextTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensebridge_empty_text_requests_total",
			Help: "Requests short-circuited because the input text was empty",
		},
		[]string{"endpoint"},
	)
)
