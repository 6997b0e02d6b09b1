package logx

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Русский комментарий: Пакет инкапсулирует настройку структурированного логирования.
// Все операционные сообщения пишутся на английском, zap даёт единый JSON-формат,
// lumberjack — автоматическую ротацию файла логов.

// DefaultLogFile — путь к файлу логов бота.
const DefaultLogFile = "logs/strazh.log"

// Rotation задаёт параметры ротации файла логов.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultRotation — разумные значения по умолчанию для небольшого бота.
func DefaultRotation() Rotation {
	return Rotation{MaxSizeMB: 50, MaxBackups: 5, MaxAgeDays: 30}
}

// New создаёт логгер с заданным уровнем и режимом вывода.
// pretty=true включает человекочитаемый console-encoder (для локальной отладки),
// иначе используется production JSON. Логи всегда дублируются в stdout и файл.
func New(level string, pretty bool, rot Rotation) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	var encoderCfg zapcore.EncoderConfig
	if pretty {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
	} else {
		encoderCfg = zap.NewProductionEncoderConfig()
	}
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if pretty {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   DefaultLogFile,
		MaxSize:    rot.MaxSizeMB,
		MaxBackups: rot.MaxBackups,
		MaxAge:     rot.MaxAgeDays,
		Compress:   true,
	})
	consoleWriter := zapcore.AddSync(os.Stdout)

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, consoleWriter, zapLevel),
		zapcore.NewCore(encoder, fileWriter, zapLevel),
	)

	return zap.New(core, zap.AddCaller()), nil
}
