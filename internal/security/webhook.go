package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"miche-video-server/config"
	"miche-video-server/internal/model"
	"miche-video-server/internal/util"
)

// SignatureHeader : заголовок с подписью платёжного провайдера.
// Формат: t=<unix>,v1=<hex>[,v1=<hex>...]
const SignatureHeader = "Payment-Signature"

// Тексты ошибок намеренно не содержат ни секрета, ни вычисленной подписи
var (
	ErrMalformedSignature = errors.New("некорректный заголовок подписи")
	ErrSignatureTooOld    = errors.New("метка времени подписи слишком старая")
	ErrSignatureInFuture  = errors.New("метка времени подписи из будущего")
	ErrSignatureMismatch  = errors.New("подпись не совпала")
	ErrMalformedPayload   = errors.New("некорректное тело события")
)

// WebhookVerifier проверяет подпись входящих webhook платёжного провайдера:
// HMAC-SHA256 по строке "{timestamp}.{payload}" с допуском по времени
type WebhookVerifier struct {
	secret    []byte
	tolerance time.Duration
	clock     clock
}

func NewWebhookVerifier(cfg *config.WebhookConfig, clk clock) (*WebhookVerifier, error) {
	tolerance, err := time.ParseDuration(cfg.Tolerance)
	if err != nil {
		return nil, util.LogError("ошибка парсинга webhook tolerance", err)
	}

	return &WebhookVerifier{
		secret:    []byte(cfg.Secret),
		tolerance: tolerance,
		clock:     clk,
	}, nil
}

// Verify разбирает заголовок подписи, проверяет допуск по времени и HMAC,
// затем парсит тело как платёжное событие. Совпадения хотя бы одной из
// подписей v1 достаточно: провайдер присылает несколько при ротации секрета
func (v *WebhookVerifier) Verify(signatureHeader string, payload []byte) (*model.PaymentEvent, error) {
	timestamp, signatures, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return nil, err
	}

	now := v.clock.Now().Unix()
	if now-timestamp > int64(v.tolerance.Seconds()) {
		return nil, ErrSignatureTooOld
	}
	if timestamp-now > int64(v.tolerance.Seconds()) {
		return nil, ErrSignatureInFuture
	}

	expected := v.computeSignature(timestamp, payload)
	if !anySignatureMatches(expected, signatures) {
		return nil, ErrSignatureMismatch
	}

	// валидная подпись не гарантирует валидное тело
	var event model.PaymentEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ErrMalformedPayload
	}

	return &event, nil
}

func (v *WebhookVerifier) computeSignature(timestamp int64, payload []byte) []byte {
	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return mac.Sum(nil)
}

// anySignatureMatches : экзистенциальное сравнение в константное время
func anySignatureMatches(expected []byte, signatures []string) bool {
	matched := false
	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, decoded) {
			matched = true
		}
	}
	return matched
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, ErrMalformedSignature
	}

	var timestampStr string
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestampStr = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestampStr == "" || len(signatures) == 0 {
		return 0, nil, ErrMalformedSignature
	}

	timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return 0, nil, ErrMalformedSignature
	}

	return timestamp, signatures, nil
}
