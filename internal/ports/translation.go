package ports

import (
	"context"

	"github.com/bnema/voxlate/internal/domain"
)

type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (domain.Translation, error)
}

type LanguageDetector interface {
	Detect(text string) string
}

type TranslationCache interface {
	Get(text string) (domain.Translation, bool)
	Put(text string, translation domain.Translation)
}
