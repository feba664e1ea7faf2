// SPDX-License-Identifier: MIT

// Package metrics provides Prometheus metrics for the configuration stores.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels shared by the store counters.
const (
	ResultOK      = "ok"
	ResultFailure = "failure"
)

var (
	storeLoadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "romcfg_store_load_total",
		Help: "Config file loads by result",
	}, []string{"result"}) // result=ok|failure

	storeSaveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "romcfg_store_save_total",
		Help: "Config file saves by result",
	}, []string{"result"})

	parseTruncatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "romcfg_parse_truncated_total",
		Help: "Config files whose parse stopped early on a malformed line, by reason",
	}, []string{"reason"})

	storeReloadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "romcfg_store_reload_total",
		Help: "Store holder reloads by store and result",
	}, []string{"store", "result"})

	catalogEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "romcfg_catalog_entries",
		Help: "Number of ROM entries in the catalog (last scan or cleanup)",
	})

	catalogScannedFiles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "romcfg_catalog_scanned_files_total",
		Help: "ROM files visited by catalog scans by outcome",
	}, []string{"outcome"}) // outcome=cached|skipped|error
)

func IncLoad(result string)         { storeLoadTotal.WithLabelValues(result).Inc() }
func IncSave(result string)         { storeSaveTotal.WithLabelValues(result).Inc() }
func IncParseTruncated(r string)    { parseTruncatedTotal.WithLabelValues(r).Inc() }
func RecordCatalogEntries(n int)    { catalogEntries.Set(float64(n)) }
func IncScannedFile(outcome string) { catalogScannedFiles.WithLabelValues(outcome).Inc() }

// IncReload counts a holder reload for the named store.
func IncReload(store, result string) {
	storeReloadTotal.WithLabelValues(store, result).Inc()
}

// Result maps an error to the result label.
func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultOK
}
