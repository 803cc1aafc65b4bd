package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestError() {
	s.Run("message wins over code", func() {
		s.Equal("app key is not registered", New(CodeInvalidClient, "app key is not registered").Error())
	})

	s.Run("falls back to code", func() {
		err := &Error{Code: CodeUpstream}
		s.Equal("upstream_error", err.Error())
	})
}

func (s *DomainErrorsSuite) TestIs() {
	s.Run("matches by code", func() {
		err := New(CodeBadRequest, "missing body")
		s.True(errors.Is(err, New(CodeBadRequest, "")))
		s.False(errors.Is(err, New(CodeInternal, "")))
	})

	s.Run("matches through fmt wrapping", func() {
		err := fmt.Errorf("decode: %w", New(CodeBadRequest, "bad json"))
		s.True(HasCode(err, CodeBadRequest))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("keeps existing code", func() {
		inner := New(CodeNotFound, "user missing")
		wrapped := Wrap(inner, CodeInternal, "lookup failed")
		s.True(HasCode(wrapped, CodeNotFound))
		s.Equal("lookup failed", wrapped.Error())
		s.ErrorIs(wrapped, inner)
	})

	s.Run("applies code to plain errors", func() {
		root := errors.New("connection reset")
		wrapped := Wrap(root, CodeUpstream, "provider unreachable")
		s.True(HasCode(wrapped, CodeUpstream))
		s.ErrorIs(wrapped, root)
	})
}
