package http

import (
	"net/http"

	"github.com/mauv0809/courtside/internal/config"
	"github.com/mauv0809/courtside/internal/engine"
	"github.com/mauv0809/courtside/internal/league"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/playtomic"
	"github.com/mauv0809/courtside/internal/processor"
	"github.com/mauv0809/courtside/internal/pubsub"
)

type Server struct {
	Store           league.LeagueStore
	Engine          engine.Engine
	Metrics         metrics.Metrics
	MetricsHandler  http.Handler
	Cfg             config.Config
	PlaytomicClient playtomic.PlaytomicClient
	Notifier        notifier.Notifier
	Processor       *processor.Processor
	Router          *http.ServeMux
	pubsub          pubsub.PubSubClient
}
