package moderation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Русский комментарий: Вердикт классификатора. Модель обязана вернуть JSON
// строго по схеме AnalysisReport; всё остальное — MalformedVerdictError,
// который вызывающий обязан трактовать как "не флаговать" (fail-open), но
// логировать с сырым текстом для разбора.

// Outcome — итог анализа.
type Outcome string

const (
	OutcomeFlag Outcome = "FLAG"
	OutcomePass Outcome = "PASS"
)

// SuggestedAction — рекомендация модели по дальнейшим шагам.
type SuggestedAction string

const (
	ActionAdminReviewUrgent SuggestedAction = "ADMIN_REVIEW_URGENT"
	ActionAdminReviewNormal SuggestedAction = "ADMIN_REVIEW_NORMAL"
	ActionLogOnly           SuggestedAction = "LOG_ONLY"
	ActionNoAction          SuggestedAction = "NO_ACTION"
)

// AnalysisReport — структурированный вердикт классификатора.
// Эфемерный: никогда не сохраняется.
type AnalysisReport struct {
	AssessmentOutcome Outcome `json:"assessmentOutcome"`

	// Основная категория флага (например "CryptoScam"). Пусто при PASS.
	PrimaryReason string `json:"primaryReason,omitempty"`

	// Краткое объяснение флага. Пусто при PASS.
	DetailedReasoning string `json:"detailedReasoning,omitempty"`

	// Идентификаторы нарушенных политик.
	ViolatedPolicies []string `json:"violatedPolicies"`

	// Уверенность модели, 0..100.
	ConfidenceScore int `json:"confidenceScore"`

	SuggestedAction SuggestedAction `json:"suggestedAction"`
}

// Flagged сообщает, является ли вердикт флагом.
func (r *AnalysisReport) Flagged() bool {
	return r.AssessmentOutcome == OutcomeFlag
}

// MalformedVerdictError — классификатор вернул текст, который не разбирается
// как AnalysisReport. Несёт сырой ответ для диагностики.
type MalformedVerdictError struct {
	Raw string
	Err error
}

func (e *MalformedVerdictError) Error() string {
	return fmt.Sprintf("malformed classifier verdict: %v (raw: %q)", e.Err, e.Raw)
}

func (e *MalformedVerdictError) Unwrap() error {
	return e.Err
}

// IsMalformedVerdict сообщает, является ли ошибка ошибкой разбора вердикта.
func IsMalformedVerdict(err error) bool {
	var mv *MalformedVerdictError
	return errors.As(err, &mv)
}

// StripFences убирает случайную обёртку из markdown code-fence вокруг JSON.
// Модели любят заворачивать ответ в ```json ... ``` вопреки инструкции.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseReport разбирает сырой текст ответа классификатора в AnalysisReport.
// Любое отклонение от схемы — MalformedVerdictError, никогда не "PASS".
func ParseReport(raw string) (*AnalysisReport, error) {
	clean := StripFences(raw)

	var report AnalysisReport
	if err := json.Unmarshal([]byte(clean), &report); err != nil {
		return nil, &MalformedVerdictError{Raw: raw, Err: err}
	}

	switch report.AssessmentOutcome {
	case OutcomeFlag, OutcomePass:
	default:
		return nil, &MalformedVerdictError{
			Raw: raw,
			Err: fmt.Errorf("unknown assessmentOutcome %q", report.AssessmentOutcome),
		}
	}

	if report.ConfidenceScore < 0 || report.ConfidenceScore > 100 {
		return nil, &MalformedVerdictError{
			Raw: raw,
			Err: fmt.Errorf("confidenceScore %d out of range 0..100", report.ConfidenceScore),
		}
	}

	switch report.SuggestedAction {
	case ActionAdminReviewUrgent, ActionAdminReviewNormal, ActionLogOnly, ActionNoAction:
	default:
		return nil, &MalformedVerdictError{
			Raw: raw,
			Err: fmt.Errorf("unknown suggestedAction %q", report.SuggestedAction),
		}
	}

	return &report, nil
}
