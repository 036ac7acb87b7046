package llm

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"

	"portfolio-chat-api/internal/config"
	"portfolio-chat-api/internal/domain/service"
	apperrors "portfolio-chat-api/pkg/errors"
	"portfolio-chat-api/pkg/logger"
	"portfolio-chat-api/pkg/metrics"
)

// BreakerCompleter 为 Completer 加熔断
// 熔断打开期间直接返回 CodeServiceUnavailable，不再请求上游
type BreakerCompleter struct {
	next    service.Completer
	breaker *gobreaker.CircuitBreaker
}

var _ service.Completer = (*BreakerCompleter)(nil)

// NewBreakerCompleter 按配置包装 next
func NewBreakerCompleter(next service.Completer, cfg config.CircuitBreakerConfig) *BreakerCompleter {
	name := "llm." + service.ProviderName(next)

	minRequests := cfg.MinRequests
	if minRequests == 0 {
		minRequests = 5
	}
	ratio := cfg.FailureRatio
	if ratio <= 0 {
		ratio = 0.6
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.LLMCircuitState.WithLabelValues(name).Set(stateValue(to))
			logger.Warn(context.Background(), "circuit breaker state changed",
				"name", name, "from", from.String(), "to", to.String())
		},
		// 调用方取消不算上游故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	metrics.LLMCircuitState.WithLabelValues(name).Set(stateValue(gobreaker.StateClosed))
	return &BreakerCompleter{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *BreakerCompleter) Configured() bool { return b.next.Configured() }

func (b *BreakerCompleter) Provider() string { return service.ProviderName(b.next) }

// State 当前熔断状态
func (b *BreakerCompleter) State() gobreaker.State { return b.breaker.State() }

func (b *BreakerCompleter) Complete(ctx context.Context, req service.CompletionRequest) (string, error) {
	out, err := b.breaker.Execute(func() (interface{}, error) {
		return b.next.Complete(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", apperrors.Wrap(err, apperrors.CodeServiceUnavailable, "completion provider circuit is open")
		}
		return "", err
	}
	text, _ := out.(string)
	return text, nil
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

