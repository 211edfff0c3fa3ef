package observe

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	onlineUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_online_users",
		Help: "Number of connections in the live broadcast set",
	})

	registeredNames = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_registry_entries",
		Help: "Number of address to name entries held by the dispatcher",
	})

	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total inbound messages handled by the dispatcher, by message type",
		},
		[]string{"type"}, // REG_NAME|CHAT_MESSAGE
	)

	broadcastFramesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_broadcast_frames_total",
		Help: "Total frames written to peers",
	})

	prunedPeersTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_pruned_peers_total",
		Help: "Total peers removed from the live set after a failed write",
	})

	readerExitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_reader_exits_total",
			Help: "Total connection readers stopped, by reason",
		},
		[]string{"reason"}, // closed|invalid_frame|too_large|io|dispatcher_gone|shutdown
	)
)

func init() {
	prometheus.MustRegister(
		onlineUsers,
		registeredNames,
		messagesTotal,
		broadcastFramesTotal,
		prunedPeersTotal,
		readerExitsTotal,
	)
}

func IncMessage(kind string)      { messagesTotal.WithLabelValues(kind).Inc() }
func IncBroadcastFrame()          { broadcastFramesTotal.Inc() }
func IncPruned()                  { prunedPeersTotal.Inc() }
func IncReaderExit(reason string) { readerExitsTotal.WithLabelValues(reason).Inc() }
func SetOnline(n int)             { onlineUsers.Set(float64(n)) }
func SetRegistered(n int)         { registeredNames.Set(float64(n)) }
