package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/club-engine/models"
	"github.com/Dosada05/club-engine/storage"
)

// StandingsArchiver сохраняет итоговую таблицу завершённого турнира во внешнее
// хранилище. Архивация выполняется вне критической секции: её сбой логируется
// и не влияет на результат команды.
type StandingsArchiver interface {
	ArchiveStandings(ctx context.Context, tournamentID int, standings []models.LeaderboardRow) error
}

type uploaderArchiver struct {
	uploader storage.FileUploader
}

func NewUploaderArchiver(uploader storage.FileUploader) StandingsArchiver {
	return &uploaderArchiver{uploader: uploader}
}

type standingsDocument struct {
	TournamentID int                     `json:"tournament_id"`
	FinishedAt   time.Time               `json:"finished_at"`
	Standings    []models.LeaderboardRow `json:"standings"`
}

func (a *uploaderArchiver) ArchiveStandings(ctx context.Context, tournamentID int, standings []models.LeaderboardRow) error {
	doc := standingsDocument{
		TournamentID: tournamentID,
		FinishedAt:   time.Now().UTC(),
		Standings:    standings,
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal standings for tournament %d: %w", tournamentID, err)
	}

	key := fmt.Sprintf("tournaments/%d/standings.json", tournamentID)
	if _, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("failed to upload standings archive: %w", err)
	}
	return nil
}
