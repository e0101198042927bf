package actions

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/fusionlink/fusionlink/pkg/domain"
	"github.com/fusionlink/fusionlink/pkg/ports"
)

type executeCodeParams struct {
	Code            string `mapstructure:"code"`
	TransactionName string `mapstructure:"transaction_name"`
}

func executeCode(deps Deps) Handler {
	return func(ctx context.Context, params map[string]any) (any, error) {
		var p executeCodeParams
		if err := decodeParams("execute_code", params, &p); err != nil {
			return nil, err
		}
		if p.Code == "" {
			return nil, domain.NewInvalidUserInput("Parameter 'code' cannot be empty for action 'execute_code'")
		}
		return deps.Executor.Execute(ctx, p.Code, p.TransactionName)
	}
}

type screenshotParams struct {
	Filepath string `mapstructure:"filepath"`
}

func getViewportScreenshot(deps Deps) Handler {
	return func(ctx context.Context, params map[string]any) (any, error) {
		var p screenshotParams
		if err := decodeParams("get_viewport_screenshot", params, &p); err != nil {
			return nil, err
		}
		if p.Filepath == "" {
			return nil, domain.NewInvalidUserInput("Parameter 'filepath' cannot be empty")
		}

		return runOnPump(ctx, deps.Host.Pump(), func() (any, error) {
			viewport, err := deps.Host.ActiveViewport()
			if err != nil {
				return nil, fmt.Errorf("no active viewport found, cannot take screenshot: %w", err)
			}
			// Zero size means the viewport's on-screen size.
			if err := viewport.SaveAsImageFile(p.Filepath, 0, 0); err != nil {
				return nil, fmt.Errorf("failed to save screenshot to %s: %w", p.Filepath, err)
			}
			return map[string]string{"filepath": p.Filepath}, nil
		})
	}
}

func getUserParameters(deps Deps) Handler {
	return func(ctx context.Context, params map[string]any) (any, error) {
		var p struct{}
		if err := decodeParams("get_user_parameters", params, &p); err != nil {
			return nil, err
		}
		return runOnPump(ctx, deps.Host.Pump(), func() (any, error) {
			doc, err := deps.Host.ActiveDocument()
			if err != nil {
				return nil, fmt.Errorf("no active design found: %w", err)
			}
			return doc.UserParameters().List(), nil
		})
	}
}

type setParameterParams struct {
	ParamName  string `mapstructure:"param_name"`
	Expression string `mapstructure:"expression"`
}

func setParameter(deps Deps) Handler {
	return func(ctx context.Context, params map[string]any) (any, error) {
		var p setParameterParams
		if err := decodeParams("set_parameter", params, &p); err != nil {
			return nil, err
		}
		if p.ParamName == "" {
			return nil, domain.NewInvalidUserInput("Parameter 'param_name' cannot be empty")
		}
		if p.Expression == "" {
			return nil, domain.NewInvalidUserInput("Parameter 'expression' cannot be empty")
		}

		return runOnPump(ctx, deps.Host.Pump(), func() (any, error) {
			doc, err := deps.Host.ActiveDocument()
			if err != nil {
				return nil, fmt.Errorf("no active design found: %w", err)
			}
			updated, err := doc.AllParameters().SetExpression(p.ParamName, p.Expression)
			if err != nil {
				return nil, err
			}
			return updated, nil
		})
	}
}

type listTransactionsParams struct {
	Limit int `mapstructure:"limit"`
}

func listTransactions(deps Deps) Handler {
	return func(ctx context.Context, params map[string]any) (any, error) {
		var p listTransactionsParams
		if err := decodeParams("list_transactions", params, &p); err != nil {
			return nil, err
		}
		records, err := deps.Journal.List(ctx, p.Limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list transactions: %w", err)
		}
		return records, nil
	}
}

// decodeParams maps the JSON body into a typed parameter struct.
// Unknown keys are caller mistakes, reported as invalid input.
func decodeParams(action string, params map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return fmt.Errorf("cannot build decoder for '%s': %w", action, err)
	}
	if params == nil {
		params = map[string]any{}
	}
	if err := decoder.Decode(params); err != nil {
		return domain.NewInvalidUserInput(fmt.Sprintf("Invalid parameters for action '%s': %v", action, err))
	}
	return nil
}

// runOnPump runs fn on the host's dispatch goroutine and waits for it.
// Host objects must never be touched from the HTTP handler goroutine
// directly; this is the read-path counterpart of the transactional
// executor for quick host calls that need no undo boundary.
func runOnPump(ctx context.Context, pump ports.EventPump, fn func() (any, error)) (any, error) {
	done := make(chan struct{})
	var (
		result any
		err    error
	)
	pump.Post(func() {
		result, err = fn()
		close(done)
	})
	select {
	case <-done:
		return result, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
