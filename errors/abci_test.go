package errors

import (
	stdlib "errors"
	"fmt"
	"strings"
	"testing"
)

func TestABCIInfo(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantLog  string
	}{
		"plain framework error": {
			err:      ErrNotFound,
			debug:    false,
			wantCode: ErrNotFound.code,
			wantLog:  "not found",
		},
		"wrapped framework error": {
			err:      Wrap(Wrap(ErrNotFound, "inner"), "outer"),
			debug:    false,
			wantCode: ErrNotFound.code,
			wantLog:  "outer: inner: not found",
		},
		"nil is success": {
			err:      nil,
			debug:    false,
			wantCode: SuccessABCICode,
			wantLog:  "",
		},
		"stdlib is redacted": {
			err:      stdlib.New("stdlib"),
			debug:    false,
			wantCode: internalABCICode,
			wantLog:  internalABCILog,
		},
		"stdlib returns error message in debug mode": {
			err:      stdlib.New("stdlib"),
			debug:    true,
			wantCode: internalABCICode,
			wantLog:  "stdlib",
		},
		"wrapped stdlib is redacted": {
			err:      Wrap(stdlib.New("stdlib"), "wrapped"),
			debug:    false,
			wantCode: internalABCICode,
			wantLog:  internalABCILog,
		},
		"panic is redacted even with a code": {
			err:      Wrap(ErrPanic, "an unexpected panic"),
			debug:    false,
			wantCode: internalABCICode,
			wantLog:  internalABCILog,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, log := ABCIInfo(tc.err, tc.debug)
			if code != tc.wantCode {
				t.Errorf("want %d code, got %d", tc.wantCode, code)
			}
			if tc.debug {
				// Debug mode must contain the original message,
				// the exact formatting includes a stacktrace.
				if !strings.Contains(log, tc.wantLog) {
					t.Errorf("want log to contain %q, got %q", tc.wantLog, log)
				}
			} else if log != tc.wantLog {
				t.Errorf("want %q log, got %q", tc.wantLog, log)
			}
		})
	}
}

func TestABCIInfoStacktrace(t *testing.T) {
	cases := map[string]struct {
		err            error
		debug          bool
		wantStacktrace bool
	}{
		"wrapped error in debug mode provides stacktrace": {
			err:            Wrap(ErrNotFound, "wrapped"),
			debug:          true,
			wantStacktrace: true,
		},
		"wrapped error in non-debug mode does not have stacktrace": {
			err:            Wrap(ErrNotFound, "wrapped"),
			debug:          false,
			wantStacktrace: false,
		},
	}

	const thisTestSrc = "errors/abci_test.go"

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, log := ABCIInfo(tc.err, tc.debug)
			if tc.wantStacktrace {
				if !strings.Contains(log, thisTestSrc) {
					t.Errorf("log does not contain this file stack trace: %s", log)
				}
				// The debug format interleaves the stack between
				// the message layers.
				if !strings.Contains(log, "wrapped") || !strings.Contains(log, "not found") {
					t.Errorf("log does not contain error message: %s", log)
				}
			} else if log != "wrapped: not found" {
				t.Fatalf("unexpected log message: %s", log)
			}
		})
	}
}

func TestABCIError(t *testing.T) {
	cases := map[string]struct {
		code    uint32
		log     string
		wantNil bool
		wantIs  *Error
	}{
		"success code returns nil": {
			code:    SuccessABCICode,
			wantNil: true,
		},
		"registered code matches the registered error": {
			code:   ErrUnauthorized.code,
			log:    "not logged in",
			wantIs: ErrUnauthorized,
		},
		"unknown code produces an error": {
			code: 87123,
			log:  "something",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := ABCIError(tc.code, tc.log)
			if tc.wantNil {
				if err != nil {
					t.Fatalf("want nil, got %+v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("want an error")
			}
			if tc.wantIs != nil && !tc.wantIs.Is(err) {
				t.Fatalf("want %v, got %+v", tc.wantIs, err)
			}
			if code := abciCode(err); code != tc.code {
				t.Fatalf("want %d code, got %d", tc.code, code)
			}
			if !strings.Contains(err.Error(), tc.log) {
				t.Fatalf("want log %q within %q", tc.log, err.Error())
			}
		})
	}
}

func TestABCIErrorRoundTrip(t *testing.T) {
	// An error that traveled through the wire must keep its code.
	source := Wrap(ErrExpired, "too late")
	code, log := ABCIInfo(source, false)
	back := ABCIError(code, log)
	if !ErrExpired.Is(back) {
		t.Fatalf("restored error does not match the source: %+v", back)
	}
	if got := fmt.Sprint(back); !strings.Contains(got, "too late") {
		t.Fatalf("restored error lost the description: %q", got)
	}
}
