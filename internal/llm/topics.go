// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/keyscope/internal/keywords"
	"github.com/tomtom215/keyscope/internal/metrics"
)

const (
	// TopicCount is the number of topics always returned.
	TopicCount = 4

	// sampleSize bounds how many documents feed the prompt and the view average.
	sampleSize = 10

	maxTitleRunes       = 30
	maxDescriptionRunes = 100
	maxPromptKeywords   = 20
)

// Content types.
const (
	ContentShortForm = "shortform"
	ContentLongForm  = "longform"
)

// Difficulty labels. The first two topics are always easy.
const (
	DifficultyEasy   = "쉬움"
	DifficultyNormal = "보통"
)

var (
	titleStrip       = regexp.MustCompile(`[*#.\d]`)
	descriptionStrip = regexp.MustCompile(`[*#]`)
	numberedLine     = regexp.MustCompile(`^\d+\.`)
)

// Topic is one proposed video topic.
type Topic struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	TargetSituation string `json:"targetSituation,omitempty"`
	CoreValue       string `json:"coreValue,omitempty"`
	Monetization    string `json:"monetization,omitempty"`
	EstimatedViews  int64  `json:"estimatedViews"`
	Difficulty      string `json:"difficulty"`
	Duration        string `json:"duration"`
	Category        string `json:"category"`
}

// TopicOptions shape the generated topics.
type TopicOptions struct {
	ContentType string `json:"contentType" validate:"omitempty,oneof=shortform longform"`
	ScriptStyle string `json:"scriptStyle" validate:"omitempty,oneof=educational experience lifestyle product"`
}

// TopicSet is the result of one generation.
type TopicSet struct {
	Topics      []Topic `json:"topics"`
	Keyword     string  `json:"keyword"`
	AvgViews    int64   `json:"avgViews"`
	AIGenerated bool    `json:"aiGenerated"`
}

// Classifier assigns a category to text.
type Classifier interface {
	Classify(text string) keywords.Classification
}

// Completer produces a chat completion.
type Completer interface {
	Complete(ctx context.Context, messages []Message, maxTokens int) (string, error)
}

// TopicGenerator proposes topics for a keyword. It never fails: when the
// completer is unavailable or its answer is unusable, templated topics are
// returned instead.
type TopicGenerator struct {
	completer  Completer
	classifier Classifier
	logger     zerolog.Logger
	newID      func() string
}

// NewTopicGenerator creates a generator. completer may be nil.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewTopicGenerator(completer Completer, classifier Classifier, logger zerolog.Logger) *TopicGenerator {
	return &TopicGenerator{
		completer:  completer,
		classifier: classifier,
		logger:     logger.With().Str("component", "topics").Logger(),
		newID:      uuid.NewString,
	}
}

// Topics returns exactly TopicCount topics for keyword, informed by the
// first documents of docs.
func (g *TopicGenerator) Topics(ctx context.Context, keyword string, docs []keywords.Document, opts TopicOptions) TopicSet {
	keyword = strings.TrimSpace(keyword)
	sample := docs
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	avg := averageViews(sample)

	set := TopicSet{Keyword: keyword, AvgViews: avg}

	topics, ok := g.generate(ctx, keyword, sample, opts, avg)
	if ok {
		set.AIGenerated = true
	} else {
		topics = templateTopics(keyword, opts.ScriptStyle, avg)
	}

	category := g.category(keyword)
	duration := durationFor(opts.ContentType)
	for i := range topics {
		topics[i].ID = g.newID()
		topics[i].Difficulty = DifficultyNormal
		if i < 2 {
			topics[i].Difficulty = DifficultyEasy
		}
		topics[i].Duration = duration
		topics[i].Category = category
		if topics[i].EstimatedViews <= 0 {
			topics[i].EstimatedViews = avg
		}
	}
	set.Topics = topics
	return set
}

func (g *TopicGenerator) generate(ctx context.Context, keyword string, sample []keywords.Document, opts TopicOptions, avg int64) ([]Topic, bool) {
	if g.completer == nil {
		metrics.TopicFallbacks.WithLabelValues("disabled").Inc()
		return nil, false
	}

	answer, err := g.completer.Complete(ctx, buildPrompt(keyword, sample, opts, avg), 0)
	if err != nil {
		reason := "error"
		if errors.Is(err, ErrDisabled) {
			reason = "disabled"
		} else {
			g.logger.Warn().Err(err).Str("keyword", keyword).Msg("Topic generation failed, using templates")
		}
		metrics.TopicFallbacks.WithLabelValues(reason).Inc()
		return nil, false
	}

	if topics, ok := parseJSONTopics(answer); ok {
		return normalizeTopics(topics, keyword, avg), true
	}
	metrics.TopicFallbacks.WithLabelValues("unparsed").Inc()
	g.logger.Debug().Str("keyword", keyword).Msg("Completion was not JSON, parsing as text")
	return ParseTopicsFromText(answer, keyword, avg), true
}

func (g *TopicGenerator) category(keyword string) string {
	if g.classifier == nil || keyword == "" {
		return "general"
	}
	return g.classifier.Classify(keyword).Category
}

// parseJSONTopics decodes the span from the first '{' to the last '}'.
func parseJSONTopics(answer string) ([]Topic, bool) {
	start := strings.IndexByte(answer, '{')
	end := strings.LastIndexByte(answer, '}')
	if start < 0 || end <= start {
		return nil, false
	}
	var payload struct {
		Topics []Topic `json:"topics"`
	}
	if err := json.Unmarshal([]byte(answer[start:end+1]), &payload); err != nil {
		return nil, false
	}
	if payload.Topics == nil {
		return nil, false
	}
	return payload.Topics, true
}

// normalizeTopics drops untitled entries, pads and truncates to TopicCount.
func normalizeTopics(in []Topic, keyword string, avg int64) []Topic {
	out := make([]Topic, 0, TopicCount)
	for _, t := range in {
		t.Title = truncateRunes(strings.TrimSpace(t.Title), maxTitleRunes)
		if t.Title == "" {
			continue
		}
		t.Description = truncateRunes(strings.TrimSpace(t.Description), maxDescriptionRunes)
		out = append(out, t)
	}
	return padTopics(out, keyword, avg)
}

// ParseTopicsFromText extracts topics from free-form text. A line mentioning
// a title, holding bold markup or starting with "N." opens a topic; a later
// line mentioning a description fills it in. The result is padded and
// truncated to TopicCount.
func ParseTopicsFromText(text, keyword string, avg int64) []Topic {
	var topics []Topic
	var current *Topic
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch {
		case strings.Contains(trimmed, "제목") || strings.Contains(trimmed, "**") || numberedLine.MatchString(trimmed):
			if current != nil {
				topics = append(topics, *current)
			}
			current = &Topic{
				Title:           truncateRunes(strings.TrimSpace(titleStrip.ReplaceAllString(trimmed, "")), maxTitleRunes),
				Description:     fmt.Sprintf("%s에 대한 맞춤 정보를 제공합니다.", keyword),
				TargetSituation: "관련 정보가 필요한 시청자",
				CoreValue:       "실용적인 정보 습득",
				Monetization:    "애드센스",
				EstimatedViews:  avg,
			}
		case current != nil && strings.Contains(trimmed, "설명"):
			current.Description = truncateRunes(strings.TrimSpace(descriptionStrip.ReplaceAllString(trimmed, "")), maxDescriptionRunes)
		}
	}
	if current != nil {
		topics = append(topics, *current)
	}
	return padTopics(topics, keyword, avg)
}

func padTopics(topics []Topic, keyword string, avg int64) []Topic {
	for len(topics) < TopicCount {
		topics = append(topics, Topic{
			Title:           fmt.Sprintf("%s 가이드 %d", keyword, len(topics)+1),
			Description:     fmt.Sprintf("%s 관련 실용적 정보를 쉽게 설명합니다.", keyword),
			TargetSituation: fmt.Sprintf("%s에 관심 있는 시청자", keyword),
			CoreValue:       "검증된 정보와 실용적 팁",
			Monetization:    "애드센스",
			EstimatedViews:  avg,
		})
	}
	return topics[:TopicCount]
}

var styleTemplates = map[string][TopicCount]string{
	"educational": {
		"꼭 알아야 할 %s 기초 상식",
		"%s 초보자도 쉽게 따라하는 방법",
		"의외로 모르는 %s의 진실 5가지",
		"%s 제대로 시작하는 단계별 가이드",
	},
	"experience": {
		"직접 해본 %s 실제 후기",
		"%s 하면서 겪은 시행착오",
		"시행착오 끝에 찾은 최고의 %s 방법",
		"%s 1년 해보고 달라진 점",
	},
	"lifestyle": {
		"일상에서 바로 쓰는 %s 꿀팁",
		"집에서 간단히 %s 해결하는 법",
		"%s로 바뀌는 하루 루틴",
		"가족과 함께하는 %s 시간",
	},
	"product": {
		"%s 제품 솔직 리뷰",
		"%s 상품 똑똑하게 고르는 법",
		"%s 가성비 제품 추천",
		"%s 제품 비교 총정리",
	},
}

var styleMonetization = map[string]string{
	"educational": "애드센스 + 유료강의",
	"experience":  "애드센스 + 전자책",
	"lifestyle":   "제휴 마케팅 + 스마트스토어",
	"product":     "제휴 마케팅 + 브랜드 협찬",
}

// templateTopics is the deterministic fallback set for a script style.
func templateTopics(keyword, style string, avg int64) []Topic {
	templates, ok := styleTemplates[style]
	if !ok {
		style = "educational"
		templates = styleTemplates[style]
	}
	out := make([]Topic, 0, TopicCount)
	for _, tpl := range templates {
		out = append(out, Topic{
			Title:          fmt.Sprintf(tpl, keyword),
			Description:    fmt.Sprintf("%s에 대한 실용적인 정보를 알기 쉽게 전달합니다.", keyword),
			Monetization:   styleMonetization[style],
			EstimatedViews: avg,
		})
	}
	return out
}

func buildPrompt(keyword string, sample []keywords.Document, opts TopicOptions, avg int64) []Message {
	contentType := "롱폼(8-15분)"
	if opts.ContentType == ContentShortForm {
		contentType = "숏폼(1-3분)"
	}
	style := opts.ScriptStyle
	if style == "" {
		style = "educational"
	}

	titles := make([]string, 0, len(sample))
	seen := make(map[string]struct{})
	related := make([]string, 0, maxPromptKeywords)
	for _, d := range sample {
		titles = append(titles, "- "+d.Title)
		for _, w := range strings.Fields(d.Title) {
			if utf8.RuneCountInString(w) < 2 || len(related) >= maxPromptKeywords {
				continue
			}
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			related = append(related, w)
		}
	}

	system := "당신은 유튜브 콘텐츠 기획 전문가입니다. 검증된 정보, 과장 없는 제목, 실용적인 내용을 중시합니다."
	user := fmt.Sprintf(`키워드: %q
콘텐츠 유형: %s
스타일: %s
평균 조회수: %d
인기 영상:
%s
관련 키워드: %s

위 데이터를 바탕으로 영상 주제 %d개를 기획하고 아래 JSON 형식으로만 답하세요.
{"topics":[{"title":"제목 (30자 이내)","description":"설명 (100자 내외)","targetSituation":"타겟 상황","coreValue":"핵심 가치","monetization":"수익화 방안","estimatedViews":0}]}`,
		keyword, contentType, style, avg, strings.Join(titles, "\n"), strings.Join(related, ", "), TopicCount)

	return []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

func averageViews(docs []keywords.Document) int64 {
	if len(docs) == 0 {
		return 0
	}
	var sum float64
	for _, d := range docs {
		sum += float64(d.ViewCount)
	}
	return int64(math.Round(sum / float64(len(docs))))
}

func durationFor(contentType string) string {
	if contentType == ContentShortForm {
		return "1-3분"
	}
	return "8-15분"
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
