package eventbus

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/sirupsen/logrus"
	"github.com/weedbox/pokertournament"
	"github.com/weedbox/pokertournament/model"
)

const (
	TopicTournamentEvents = "tournament.events"
	TopicPlayerEliminated = "tournament.player_eliminated"
	TopicTournamentErrors = "tournament.errors"
)

const (
	MetadataTournamentID = "tournament_id"
	MetadataEventType    = "event_type"
)

type PlayerEliminated struct {
	TournamentID string                            `json:"tournament_id"`
	Result       pokertournament.EliminationResult `json:"result"`
}

type TournamentError struct {
	TournamentID string `json:"tournament_id"`
	Kind         string `json:"kind"`
	Error        string `json:"error"`
}

// NewGoChannel returns an in-process pub/sub for single binary deployments.
func NewGoChannel(logger *logrus.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, NewLoggerAdapter(logger))
}

// Publisher forwards engine callbacks to a watermill publisher. Publishing
// failures are logged; they never fail the engine operation.
type Publisher struct {
	publisher message.Publisher
	logger    *logrus.Logger
}

func NewPublisher(publisher message.Publisher, logger *logrus.Logger) *Publisher {
	return &Publisher{
		publisher: publisher,
		logger:    logger,
	}
}

// Callbacks returns engine callbacks that publish every event.
func (p *Publisher) Callbacks() *pokertournament.TournamentEngineCallbacks {
	cb := pokertournament.NewTournamentEngineCallbacks()

	cb.OnTournamentEvent = func(event model.GameEvent) {
		p.publish(TopicTournamentEvents, event.TournamentID, string(event.Type), event)
	}

	cb.OnPlayerEliminated = func(tournamentID string, result pokertournament.EliminationResult) {
		p.publish(TopicPlayerEliminated, tournamentID, string(model.GameEventType_PlayerEliminated), PlayerEliminated{
			TournamentID: tournamentID,
			Result:       result,
		})
	}

	cb.OnTournamentErrorUpdated = func(tournamentID string, err error) {
		kind := "internal"
		if k := pokertournament.ErrorKind(err); k != nil {
			kind = k.Error()
		}

		p.publish(TopicTournamentErrors, tournamentID, kind, TournamentError{
			TournamentID: tournamentID,
			Kind:         kind,
			Error:        err.Error(),
		})
	}

	return cb
}

func (p *Publisher) publish(topic string, tournamentID string, eventType string, payload interface{}) {
	if err := p.Publish(topic, tournamentID, eventType, payload); err != nil {
		p.logger.WithFields(logrus.Fields{
			"topic":         topic,
			"tournament_id": tournamentID,
			"event_type":    eventType,
		}).WithError(err).Error("failed to publish event")
	}
}

func (p *Publisher) Publish(topic string, tournamentID string, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(MetadataTournamentID, tournamentID)
	msg.Metadata.Set(MetadataEventType, eventType)

	p.logger.WithFields(logrus.Fields{
		"topic":         topic,
		"tournament_id": tournamentID,
		"event_type":    eventType,
	}).Debug("publishing event")

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
