package handoff_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/handoff/internal/handoff"
	"github.com/teemow/handoff/internal/server"
	"github.com/teemow/handoff/internal/tools/common"
)

func registerSubmissionTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	submitTool := mcp.NewTool(ToolProcessSubmission,
		mcp.WithDescription("Process a form submission: fill the document template with the answers, file the PDF in the respondent's folder, email it to the respondent and notify the folder owner."),
		mcp.WithString("respondentEmail",
			mcp.Required(),
			mcp.Description("Email address of the respondent (Participant B)"),
		),
		mcp.WithString("answers",
			mcp.Description(`Answers as JSON, either [{"question":"Question 1","value":"..."}] or {"Question 1":"..."}`),
		),
		mcp.WithString("timestamp",
			mcp.Description("Submission time in RFC3339 format (default: now)"),
		),
	)

	add(s, sc, submitTool, submissionHandler(sc))
}

func submissionHandler(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		respondent, err := common.RequiredString(args, "respondentEmail")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		answers, err := parseAnswers(args["answers"])
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		timestamp, err := common.TimeArg(args, "timestamp")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		sub := handoff.Submission{
			RespondentEmail: respondent,
			Timestamp:       timestamp,
			Answers:         answers,
		}

		result, err := sc.Workflow().ProcessSubmission(context.WithoutCancel(ctx), sub)
		if err != nil {
			var partial any
			if result != nil {
				partial = result
			}
			return errorResultWith("Failed to process submission", err, partial), nil
		}

		return jsonResult(result), nil
	}
}

// parseAnswers accepts the answers as a JSON string, a list of
// question/value objects or an object keyed by question title. Object keys
// are ordered by title.
func parseAnswers(v any) ([]handoff.Answer, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		var decoded any
		if err := json.Unmarshal([]byte(val), &decoded); err != nil {
			return nil, fmt.Errorf("answers must be valid JSON: %w", err)
		}
		if _, ok := decoded.(string); ok {
			return nil, fmt.Errorf("answers must be a list or an object")
		}
		return parseAnswers(decoded)
	case []any:
		answers := make([]handoff.Answer, 0, len(val))
		for i, item := range val {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("answers[%d] must be an object", i)
			}
			question, _ := obj["question"].(string)
			if question == "" {
				return nil, fmt.Errorf("answers[%d].question is required", i)
			}
			value, err := answerValue(obj["value"])
			if err != nil {
				return nil, fmt.Errorf("answers[%d].value: %w", i, err)
			}
			answers = append(answers, handoff.Answer{Question: question, Value: value})
		}
		return answers, nil
	case map[string]any:
		questions := make([]string, 0, len(val))
		for q := range val {
			questions = append(questions, q)
		}
		sort.Strings(questions)

		answers := make([]handoff.Answer, 0, len(val))
		for _, q := range questions {
			value, err := answerValue(val[q])
			if err != nil {
				return nil, fmt.Errorf("answers[%q]: %w", q, err)
			}
			answers = append(answers, handoff.Answer{Question: q, Value: value})
		}
		return answers, nil
	default:
		return nil, fmt.Errorf("answers must be a list or an object")
	}
}

func answerValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case float64, bool:
		return fmt.Sprint(val), nil
	case []any:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			s, err := answerValue(p)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ", "), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
