package svm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Metrics names.
	MetricNameTransactions = "solvault_svm_transactions_total"
	MetricNameInstructions = "solvault_svm_instructions_total"
	MetricNameFees         = "solvault_svm_fees_lamports_total"

	// Labels.
	LabelResult  = "result"
	LabelProgram = "program"

	// Results.
	ResultSuccess  = "success"
	ResultFailed   = "failed"
	ResultRejected = "rejected"
)

var (
	MetricTransactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameTransactions,
			Help: "Number of transactions submitted to the ledger, by result",
		},
		[]string{LabelResult},
	)

	MetricInstructions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameInstructions,
			Help: "Number of top-level instructions executed, by program and result",
		},
		[]string{LabelProgram, LabelResult},
	)

	MetricFees = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameFees,
			Help: "Lamports collected as transaction fees",
		},
	)
)
