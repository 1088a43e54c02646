package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"contractpilot/internal/catalog"
	"contractpilot/internal/model"
	"contractpilot/internal/pathway"
	"contractpilot/internal/requirements"
	"contractpilot/internal/scoring"
)

func newModeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mode <pathway>",
		Short: "Resolve the interview mode for a pathway identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.render(cmd.OutOrStdout(), map[string]string{
				"pathway": args[0],
				"mode":    string(pathway.ResolveMode(args[0])),
			})
		},
	}
}

type questionRow struct {
	Index    int             `json:"index"`
	Key      string          `json:"key"`
	Category model.Category  `json:"category"`
	Input    model.InputKind `json:"input"`
	Prompt   string          `json:"prompt"`
	Context  string          `json:"context,omitempty"`
	Options  []string        `json:"options,omitempty"`
}

func newQuestionsCmd(opts *options) *cobra.Command {
	var modeFlag, payloadPath string
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "List the questions a session would ask",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, mode, err := opts.loadDeal(payloadPath, modeFlag)
			if err != nil {
				return err
			}

			set := catalog.BuildQuestionSet(mode, req)
			rows := make([]questionRow, 0, len(set))
			for i, q := range set {
				prompt, context := catalog.PromptFor(q, mode, req)
				rows = append(rows, questionRow{
					Index:    i,
					Key:      q.Key,
					Category: q.Category,
					Input:    q.Input,
					Prompt:   prompt,
					Context:  context,
					Options:  q.Options,
				})
			}
			return opts.render(cmd.OutOrStdout(), map[string]interface{}{
				"mode":      mode,
				"questions": rows,
			})
		},
	}
	cmd.Flags().StringVar(&modeFlag, "mode", "", "Interview mode; defaults to the payload pathway")
	cmd.Flags().StringVar(&payloadPath, "payload", "", "Requirements payload (json or yaml)")
	return cmd
}

func newDefaultsCmd(opts *options) *cobra.Command {
	var modeFlag, payloadPath string
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Synthesize fast-track default answers for a payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, mode, err := opts.loadDeal(payloadPath, modeFlag)
			if err != nil {
				return err
			}
			keys := catalog.Keys(catalog.BuildQuestionSet(mode, req))
			return opts.render(cmd.OutOrStdout(), catalog.SynthesizeDefaults(req, keys).Raw())
		},
	}
	cmd.Flags().StringVar(&modeFlag, "mode", "", "Interview mode; defaults to the payload pathway")
	cmd.Flags().StringVar(&payloadPath, "payload", "", "Requirements payload (json or yaml)")
	cmd.MarkFlagRequired("payload")
	return cmd
}

type scoreResult struct {
	Payload            string                   `json:"payload"`
	Mode               model.Mode               `json:"mode"`
	LeverageAssessment model.LeverageAssessment `json:"leverageAssessment"`
}

func newScoreCmd(opts *options) *cobra.Command {
	var answersPath string
	var parallel int
	cmd := &cobra.Command{
		Use:   "score payload...",
		Short: "Score requirement payloads against one set of answers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answers := model.Answers{}
			if answersPath != "" {
				var err error
				if answers, err = readAnswers(answersPath); err != nil {
					return err
				}
			}

			normalizer := opts.normalizer()
			results := make([]scoreResult, len(args))

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(parallel, 1))
			for i, path := range args {
				i, path := i, path
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					raw, err := readPayload(path)
					if err != nil {
						return err
					}
					results[i] = scoreResult{
						Payload:            path,
						Mode:               pathway.ResolveMode(requirements.Pathway(raw)),
						LeverageAssessment: scoring.Assess(normalizer.Normalize(raw), answers),
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVar(&answersPath, "answers", "", "YAML file of answers keyed by question")
	cmd.Flags().IntVar(&parallel, "parallel", 4, "Payloads scored concurrently")
	return cmd
}

// loadDeal reads the optional payload and picks the mode: an explicit
// --mode wins, then the payload pathway.
func (o *options) loadDeal(payloadPath, modeFlag string) (model.Requirements, model.Mode, error) {
	var raw map[string]any
	if payloadPath != "" {
		var err error
		if raw, err = readPayload(payloadPath); err != nil {
			return model.Requirements{}, "", err
		}
	}

	mode := pathway.ResolveMode(requirements.Pathway(raw))
	if modeFlag != "" {
		mode = model.Mode(modeFlag)
		if !mode.Valid() {
			return model.Requirements{}, "", fmt.Errorf("unknown mode %q", modeFlag)
		}
	}
	return o.normalizer().Normalize(raw), mode, nil
}

// readAnswers loads answers keyed by question. Scale questions take a
// number, choice questions an option, text questions free text.
func readAnswers(path string) (model.Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode answers %s: %w", path, err)
	}

	answers := make(model.Answers, len(raw))
	for key, v := range raw {
		q, ok := catalog.Lookup(key)
		if !ok {
			return nil, fmt.Errorf("answers: unknown question %q", key)
		}
		text := strings.TrimSpace(fmt.Sprint(v))

		var a model.Answer
		switch q.Input {
		case model.InputScale:
			rating, err := strconv.Atoi(text)
			if err != nil {
				return nil, fmt.Errorf("answers: %s expects a number, got %q", key, text)
			}
			a.Rating = rating
		case model.InputChoice:
			a.SelectedOption = text
		default:
			a.Text = text
		}

		norm, ok := catalog.NormalizeAnswer(q, a)
		if !ok {
			return nil, fmt.Errorf("answers: %q is not a valid answer for %s", text, key)
		}
		answers[key] = norm
	}
	return answers, nil
}
