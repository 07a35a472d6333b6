package models

import "time"

// ContentType — тип видеоконтента.
type ContentType string

const (
	// ContentShort — короткое видео, всегда доступно всем.
	ContentShort ContentType = "SHORT"
	// ContentEventVideo — запись мероприятия, может быть премиальной.
	ContentEventVideo ContentType = "EVENT_VIDEO"
)

// ContentStatusPublished — статус опубликованного видео.
const ContentStatusPublished = "PUBLISHED"

// Content — единица видеоконтента.
type Content struct {
	ID          ID          `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	Type        ContentType `json:"type"`
	VideoURL    string      `json:"video_url"`
	IsPremium   bool        `json:"is_premium"`
	Status      string      `json:"status"`
	PublishedAt *time.Time  `json:"published_at"`
	CreatedAt   time.Time   `json:"created_at"`
}

// UploadRequest — тело запроса POST /videos/upload.
type UploadRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	URL         string `json:"url" validate:"required,url"`
	IsShort     bool   `json:"isShort"`
	IsPremium   bool   `json:"isPremium"`
}

// ViewRow — строка одного из агрегирующих представлений (view), отдаётся как есть.
type ViewRow map[string]any
