// Package metrics содержит Prometheus-метрики витрины cheapplay.
package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once       sync.Once
	collectors []prometheus.Collector
)

// register вызывается из init() каждого файла пакета и откладывает регистрацию коллекторов.
func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister регистрирует все коллекторы пакета в реестре Prometheus ровно один раз.
func MustRegister() {
	once.Do(func() {
		if len(collectors) > 0 {
			prometheus.MustRegister(collectors...)
		}
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
