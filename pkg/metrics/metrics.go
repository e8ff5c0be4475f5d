package metrics

import (
	"sync/atomic"
)

type Metrics struct {
	broadcastsTotal      int64
	broadcastFailsTotal  int64
	activeConnections    int64
	rankingsComputed     int64
	virtualBacklogBuilds int64
	duelsTotal           int64
}

var global = &Metrics{}

func IncrementBroadcasts() {
	atomic.AddInt64(&global.broadcastsTotal, 1)
}

func IncrementBroadcastFails() {
	atomic.AddInt64(&global.broadcastFailsTotal, 1)
}

func SetActiveConnections(count int64) {
	atomic.StoreInt64(&global.activeConnections, count)
}

func IncrementRankingsComputed() {
	atomic.AddInt64(&global.rankingsComputed, 1)
}

func IncrementVirtualBacklogBuilds() {
	atomic.AddInt64(&global.virtualBacklogBuilds, 1)
}

func IncrementDuels() {
	atomic.AddInt64(&global.duelsTotal, 1)
}

func GetBroadcasts() int64 {
	return atomic.LoadInt64(&global.broadcastsTotal)
}

func GetBroadcastFails() int64 {
	return atomic.LoadInt64(&global.broadcastFailsTotal)
}

func GetActiveConnections() int64 {
	return atomic.LoadInt64(&global.activeConnections)
}

func GetRankingsComputed() int64 {
	return atomic.LoadInt64(&global.rankingsComputed)
}

func GetVirtualBacklogBuilds() int64 {
	return atomic.LoadInt64(&global.virtualBacklogBuilds)
}

func GetDuels() int64 {
	return atomic.LoadInt64(&global.duelsTotal)
}

func Reset() {
	atomic.StoreInt64(&global.broadcastsTotal, 0)
	atomic.StoreInt64(&global.broadcastFailsTotal, 0)
	atomic.StoreInt64(&global.activeConnections, 0)
	atomic.StoreInt64(&global.rankingsComputed, 0)
	atomic.StoreInt64(&global.virtualBacklogBuilds, 0)
	atomic.StoreInt64(&global.duelsTotal, 0)
}
