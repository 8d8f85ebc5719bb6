package syntaxtree

import "github.com/prometheus/client_golang/prometheus"

func CacheHitsTotal() prometheus.Counter      { return cacheHitsTotal }
func CacheMissesTotal() prometheus.Counter    { return cacheMissesTotal }
func CacheEvictionsTotal() prometheus.Counter { return cacheEvictionsTotal }
