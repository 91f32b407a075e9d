package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NewUsersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_new_users_total",
		Help: "Total number of new user registrations.",
	})
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_login_attempts_total",
		Help: "Total number of login attempts (successful and failed).",
	}, []string{"status"})

	DocumentUploadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_document_uploaded_total",
		Help: "Total number of PDF documents uploaded.",
	})
	DocumentDownloadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_document_downloaded_total",
		Help: "Total number of document downloads served.",
	})
	CollectionCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_collection_created_total",
		Help: "Total number of collections created.",
	})
	ShareLinkGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_share_link_generated_total",
		Help: "Total number of collection share links generated.",
	})
	ChatMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_chat_messages_total",
		Help: "Total number of chat messages handled.",
	})
)
