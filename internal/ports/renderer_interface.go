package ports

import (
	"context"
	"quote-web-server/internal/model"
)

// DocumentRenderer : внешний сервис генерации PDF.
// TriggerRender возвращает либо готовую ссылку (URL != ""), либо id задачи.
// CheckStatus возвращает "" пока документ не готов.
// PollForArtifact опрашивает статус с фиксированным потолком попыток и
// возвращает "" без ошибки при исчерпании лимита (мягкий отказ).
type DocumentRenderer interface {
	TriggerRender(ctx context.Context, quote *model.Quote, sender model.SenderContext, force bool) (*model.ArtifactResult, error)
	CheckStatus(ctx context.Context, documentID string) (string, error)
	PollForArtifact(ctx context.Context, documentID string) (string, error)
}

// ArtifactFetcher : проверка доступности и скачивание байтов артефакта
type ArtifactFetcher interface {
	FetchArtifact(ctx context.Context, url string) ([]byte, error)
}
