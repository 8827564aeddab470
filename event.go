package pokertournament

import (
	"github.com/sirupsen/logrus"
	"github.com/weedbox/pokertournament/model"
)

func (te *tournamentEngine) emitEvent(action string, event model.GameEvent) {
	te.logger.WithFields(logrus.Fields{
		"tournament_id": te.tournamentID,
		"action":        action,
		"event":         event.Type,
	}).Debug(event.Description)

	te.onTournamentEvent(event)
}

func (te *tournamentEngine) emitErrorEvent(action string, err error) {
	entry := te.logger.WithFields(logrus.Fields{
		"tournament_id": te.tournamentID,
		"action":        action,
	})

	if ErrorKind(err) == nil {
		entry.WithError(err).Error("tournament action failed")
	} else {
		entry.WithError(err).Info("tournament action rejected")
	}

	te.onTournamentErrorUpdated(te.tournamentID, err)
}

func (te *tournamentEngine) emitPlayerEliminated(result EliminationResult) {
	te.logger.WithFields(logrus.Fields{
		"tournament_id":   te.tournamentID,
		"registration_id": result.RegistrationID,
		"place":           result.Place,
	}).Info("player eliminated")

	te.onPlayerEliminated(te.tournamentID, result)
}
