// Package dataset reads study datasets from object storage and turns them
// into catalog questions and topics.
package dataset

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"study-service/internal/models"
)

type rawOption struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

type rawQuestion struct {
	ID         string      `json:"id"`
	Number     int         `json:"number"`
	Text       string      `json:"text"`
	Options    []rawOption `json:"options"`
	Topic      topicLabel  `json:"topic"`
	Difficulty string      `json:"difficulty"`
	Keywords   []string    `json:"keywords"`
}

type rawAnswer struct {
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	Confidence    string `json:"confidence"`
}

type rawItem struct {
	Question rawQuestion `json:"question"`
	Answer   rawAnswer   `json:"answer"`
}

type rawDataset struct {
	Metadata  map[string]any `json:"metadata"`
	StudyData []rawItem      `json:"study_data"`
}

// ParsedDataset is the content of one questions.json object.
type ParsedDataset struct {
	Questions []models.Question
	Topics    []models.Topic
	Skipped   int
}

var topicNumber = regexp.MustCompile(`\d+`)

// topicLabel accepts the topic as either a JSON number or a string.
type topicLabel string

func (t *topicLabel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = topicLabel(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid topic %s: %w", string(data), err)
	}
	*t = topicLabel(n.String())
	return nil
}

// ParseCorrectAnswer turns "A", "BD" or "B, D" into a sorted letter set.
func ParseCorrectAnswer(raw string) []string {
	seen := map[string]bool{}
	letters := []string{}
	for _, r := range strings.ToUpper(raw) {
		if r < 'A' || r > 'Z' {
			continue
		}
		letter := string(r)
		if !seen[letter] {
			seen[letter] = true
			letters = append(letters, letter)
		}
	}
	sort.Strings(letters)
	return letters
}

// TopicID builds the catalog id for a dataset topic label. Labels without a
// number land in topic 0.
func TopicID(examID, label string) string {
	n := topicNumber.FindString(label)
	if n == "" {
		n = "0"
	}
	num, _ := strconv.Atoi(n)
	return fmt.Sprintf("%s-topic-%d", examID, num)
}

func topicName(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "General"
	}
	if strings.IndexFunc(label, unicode.IsLetter) < 0 {
		return "Topic " + label
	}
	return label
}

// Parse decodes one dataset object for the given provider and exam. Items
// without an answer key are skipped.
func Parse(data []byte, providerID, examID string) (*ParsedDataset, error) {
	var raw rawDataset
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	parsed := &ParsedDataset{Questions: []models.Question{}, Topics: []models.Topic{}}
	topics := map[string]bool{}

	for _, item := range raw.StudyData {
		answer := ParseCorrectAnswer(item.Answer.CorrectAnswer)
		if len(answer) == 0 || strings.TrimSpace(item.Question.Text) == "" {
			parsed.Skipped++
			continue
		}

		label := string(item.Question.Topic)
		topicID := TopicID(examID, label)
		if !topics[topicID] {
			topics[topicID] = true
			parsed.Topics = append(parsed.Topics, models.Topic{
				ID:         topicID,
				ProviderID: providerID,
				ExamID:     examID,
				Name:       topicName(label),
			})
		}

		id := item.Question.ID
		if id == "" {
			id = fmt.Sprintf("%s-q%d", examID, item.Question.Number)
		}

		options := make([]models.Option, 0, len(item.Question.Options))
		for _, o := range item.Question.Options {
			options = append(options, models.Option{Letter: strings.ToUpper(strings.TrimSpace(o.Letter)), Text: o.Text})
		}

		tags := item.Question.Keywords
		if tags == nil {
			tags = []string{}
		}

		parsed.Questions = append(parsed.Questions, models.Question{
			ID:            id,
			ProviderID:    providerID,
			ExamID:        examID,
			TopicID:       topicID,
			Number:        item.Question.Number,
			QuestionText:  item.Question.Text,
			Options:       options,
			CorrectAnswer: answer,
			Explanation:   item.Answer.Explanation,
			Difficulty:    models.ParseDifficulty(item.Question.Difficulty),
			Tags:          tags,
		})
	}
	return parsed, nil
}
