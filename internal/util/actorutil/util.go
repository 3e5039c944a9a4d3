package actorutil

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"hub2mqtt/internal/core/domain"
	"hub2mqtt/internal/mqtt"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
	"go.uber.org/zap"
)

func PipeToSelfWithRecover(ctx actor.Context, future *actor.Future, mapFn func(error) any) {
	ctx.ReenterAfter(future, func(msg any, err error) {
		if err != nil {
			ctx.Send(ctx.Self(), mapFn(err))
			return
		}
		ctx.Send(ctx.Self(), msg)
	})
}

func NewActorSystemWithZapLogger(logger *zap.Logger) *actor.ActorSystem {
	stdOutLogger := zap.NewStdLog(logger)

	var slogLevel slog.Level = slog.LevelInfo

	switch logger.Level() {
	case zap.DebugLevel:
		slogLevel = slog.LevelDebug
	case zap.InfoLevel:
		slogLevel = slog.LevelInfo
	case zap.WarnLevel:
		slogLevel = slog.LevelWarn
	case zap.ErrorLevel:
		slogLevel = slog.LevelError
	case zap.PanicLevel:
		slogLevel = slog.LevelError
	}

	return actor.NewActorSystem(actor.WithLoggerFactory(func(system *actor.ActorSystem) *slog.Logger {
		return slog.New(tint.NewHandler(stdOutLogger.Writer(), &tint.Options{
			Level:      slogLevel,
			TimeFormat: time.DateTime,
		}))
	}))
}

func ActorLogger(actorName string, logger *zap.Logger) *zap.Logger {
	return logger.With(zap.String("actor", actorName))
}

// ParsedMQTTCommandToCommand maps an MQTT command to the actor message the
// node monitor understands. Returns nil for topics that parse but carry no
// actionable command.
func ParsedMQTTCommandToCommand(cmd mqtt.ParsedMQTTCommand) (domain.ActorRequest, error) {
	switch cmd.Command {
	case mqtt.COMMAND_SWITCH, mqtt.COMMAND_LIGHT, mqtt.COMMAND_FAN:
		return domain.EntityCommandRequest{
			EntityId: cmd.DeviceId,
			Platform: cmd.Command,
			On:       cmd.Payload == mqtt.MQTT_PAYLOAD_ON,
		}, nil
	case mqtt.COMMAND_LOCK:
		return domain.EntityCommandRequest{
			EntityId: cmd.DeviceId,
			Platform: cmd.Command,
			On:       cmd.Payload == mqtt.MQTT_PAYLOAD_LOCK,
		}, nil
	case mqtt.COMMAND_COVER:
		switch cmd.Payload {
		case mqtt.MQTT_PAYLOAD_OPEN:
			return domain.EntityCommandRequest{
				EntityId: cmd.DeviceId,
				Platform: cmd.Command,
				On:       true,
			}, nil
		case mqtt.MQTT_PAYLOAD_CLOSE:
			return domain.EntityCommandRequest{
				EntityId: cmd.DeviceId,
				Platform: cmd.Command,
				On:       false,
			}, nil
		default:
			// STOP has no hub equivalent
			return nil, nil
		}
	case mqtt.COMMAND_BRIGHTNESS:
		value, err := strconv.ParseUint(cmd.Payload, 10, 8)
		if err != nil {
			return nil, err
		}
		level := uint8(value)
		return domain.EntityCommandRequest{
			EntityId: cmd.DeviceId,
			Platform: mqtt.COMMAND_LIGHT,
			On:       level > 0,
			Level:    &level,
		}, nil
	case mqtt.COMMAND_PERCENTAGE:
		value, err := strconv.ParseUint(cmd.Payload, 10, 8)
		if err != nil {
			return nil, err
		}
		if value > 100 {
			return nil, fmt.Errorf("fan percentage out of range: %d", value)
		}
		level := uint8(value)
		return domain.EntityCommandRequest{
			EntityId: cmd.DeviceId,
			Platform: mqtt.COMMAND_FAN,
			On:       level > 0,
			Level:    &level,
		}, nil
	}
	return nil, nil
}
