package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if _, err := domain.ParseGrade(c.Dictionary.DefaultGrade); err != nil {
		return fmt.Errorf("dictionary.default_grade: %w", err)
	}
	if c.Dictionary.HistoryLimit <= 0 {
		return fmt.Errorf("dictionary.history_limit must be > 0 (got %d)", c.Dictionary.HistoryLimit)
	}
	if err := c.Quiz.validate(); err != nil {
		return fmt.Errorf("quiz: %w", err)
	}
	if c.Tracker.QueueSize <= 0 || c.Tracker.Workers <= 0 {
		return fmt.Errorf("tracker: queue_size and workers must be > 0")
	}
	if c.Tracker.RetentionDays <= 0 {
		return fmt.Errorf("tracker.retention_days must be > 0 (got %d)", c.Tracker.RetentionDays)
	}
	if c.WordList.ShareCodeAttempts <= 0 {
		return fmt.Errorf("word_list.share_code_attempts must be > 0")
	}

	plans, err := ParsePlans(c.Billing.PlansRaw)
	if err != nil {
		return fmt.Errorf("billing.plans: %w", err)
	}
	c.Billing.Plans = plans

	return nil
}

func (q QuizConfig) validate() error {
	if q.QuestionCount <= 0 {
		return fmt.Errorf("question_count must be > 0 (got %d)", q.QuestionCount)
	}
	if q.AdvanceDelay < 0 {
		return fmt.Errorf("advance_delay must be >= 0 (got %s)", q.AdvanceDelay)
	}
	if q.MaxListWords < q.QuestionCount {
		return fmt.Errorf("max_list_words must be >= question_count")
	}
	return nil
}

// ParsePlans parses "id|TYPE|name|price|feat,feat;..." into plan configs.
// An empty string returns a nil slice.
func ParsePlans(raw string) ([]PlanConfig, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var plans []PlanConfig
	seen := make(map[string]bool)
	for _, item := range strings.Split(raw, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, "|")
		if len(parts) < 4 {
			return nil, fmt.Errorf("plan %q: want id|type|name|price[|features]", item)
		}
		price, err := strconv.ParseInt(strings.TrimSpace(parts[3]), 10, 64)
		if err != nil || price < 0 {
			return nil, fmt.Errorf("plan %q: invalid price %q", item, parts[3])
		}
		p := PlanConfig{
			ID:    strings.TrimSpace(parts[0]),
			Type:  strings.ToUpper(strings.TrimSpace(parts[1])),
			Name:  strings.TrimSpace(parts[2]),
			Price: price,
		}
		if p.ID == "" || p.Type == "" {
			return nil, fmt.Errorf("plan %q: id and type are required", item)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("plan %q: duplicate id", p.ID)
		}
		seen[p.ID] = true
		if len(parts) > 4 {
			for _, f := range strings.Split(parts[4], ",") {
				if f = strings.TrimSpace(f); f != "" {
					p.Features = append(p.Features, f)
				}
			}
		}
		plans = append(plans, p)
	}
	return plans, nil
}
