package domain

import "errors"

// Summary は物語から得られる学びのまとめなのだ。
type Summary struct {
	Topic           string          `json:"topic"`
	LearningSummary LearningSummary `json:"learning_summary"`
}

type LearningSummary struct {
	KeyPoints        []string `json:"key_points"`
	Benefits         []string `json:"benefits"`
	RealWorldExample string   `json:"real_world_example"`
}

func (s Summary) Validate() error {
	var errs []error
	if s.Topic == "" {
		errs = append(errs, errors.New("topic は必須です"))
	}
	if len(s.LearningSummary.KeyPoints) == 0 {
		errs = append(errs, errors.New("learning_summary.key_points が空です"))
	}
	if len(s.LearningSummary.Benefits) == 0 {
		errs = append(errs, errors.New("learning_summary.benefits が空です"))
	}
	if s.LearningSummary.RealWorldExample == "" {
		errs = append(errs, errors.New("learning_summary.real_world_example は必須です"))
	}
	return errors.Join(errs...)
}
