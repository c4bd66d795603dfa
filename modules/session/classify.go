package session

import (
	"errors"
	"strings"

	"veo-studio-server/modules/common/model"
)

// ErrorKind - 생성 실패 분류
type ErrorKind string

const (
	KindCredential ErrorKind = "credential"
	KindGeneration ErrorKind = "generation"
)

const credentialErrorMarker = "Requested entity was not found"

// Classification - 분류 결과와 사용자에게 보일 메시지
type Classification struct {
	Kind    ErrorKind
	Message string
}

// ClassifyGenerationError - 생성 실패를 키 문제/일반 실패로 분류
func ClassifyGenerationError(err error) Classification {
	if err == nil {
		return Classification{Kind: KindGeneration, Message: MessageUnexpected}
	}

	var credErr *model.CredentialError
	if errors.As(err, &credErr) || strings.Contains(err.Error(), credentialErrorMarker) {
		return Classification{Kind: KindCredential, Message: MessageCredentialInvalid}
	}

	message := err.Error()
	if strings.TrimSpace(message) == "" {
		message = MessageUnexpected
	}
	return Classification{Kind: KindGeneration, Message: message}
}
