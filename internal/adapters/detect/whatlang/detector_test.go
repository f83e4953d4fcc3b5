package whatlang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectorDetect(t *testing.T) {
	t.Parallel()

	detector := New(DefaultMinConfidence)
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "chinese", text: "你好，今天天气很好，我们去公园散步吧。", want: "zh"},
		{name: "french", text: "Bonjour tout le monde, comment allez-vous aujourd'hui ? Je vais très bien, merci beaucoup.", want: "fr"},
		{name: "english", text: "The quick brown fox jumps over the lazy dog while the children are watching from the window.", want: "en"},
		{name: "german", text: "Ich habe heute keine Zeit, aber wir können uns morgen in der Stadt treffen und zusammen essen gehen.", want: "de"},
		{name: "russian", text: "Все люди рождаются свободными и равными в своем достоинстве и правах. Они наделены разумом и совестью и должны поступать в отношении друг друга в духе братства.", want: "ru"},
		{name: "blank", text: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, detector.Detect(tt.text))
		})
	}
}

func TestDetectorLeavesShortMessagesUndetected(t *testing.T) {
	t.Parallel()

	detector := New(DefaultMinConfidence)
	for _, text := range []string{"Hello", "Thanks", "Good morning", "How are you?", "bonjour"} {
		t.Run(text, func(t *testing.T) {
			t.Parallel()
			assert.Empty(t, detector.Detect(text))
		})
	}
}

func TestDetectorReliabilityAppliesWithoutFloor(t *testing.T) {
	t.Parallel()

	assert.Empty(t, New(0).Detect("Hello"))
}

func TestDetectorConfidenceThreshold(t *testing.T) {
	t.Parallel()

	assert.Empty(t, New(1.01).Detect("The quick brown fox jumps over the lazy dog."))
}
