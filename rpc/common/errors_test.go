package common

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsConnectionFault(t *testing.T) {
	endpoint := Endpoint{Host: "nn1", Port: 8020, Version: 9}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "transport error",
			err:  &TransportError{Endpoint: endpoint, Op: "connect", Err: errors.New("refused")},
			want: true,
		},
		{
			name: "wrapped transport error",
			err:  fmt.Errorf("mkdirs: %w", &TransportError{Endpoint: endpoint, Op: "send", Err: errors.New("broken pipe")}),
			want: true,
		},
		{
			name: "timeout",
			err:  &TimeoutError{Endpoint: endpoint, Method: "getListing"},
			want: true,
		},
		{
			name: "fatal remote error",
			err:  &RemoteCallError{ClassName: "org.apache.hadoop.ipc.StandbyException", Fatal: true},
			want: true,
		},
		{
			name: "ordinary remote error",
			err:  &RemoteCallError{ClassName: "java.io.FileNotFoundException"},
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("something else"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectionFault(tt.err); got != tt.want {
				t.Errorf("IsConnectionFault() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRemoteCallErrorIsClass(t *testing.T) {
	err := &RemoteCallError{ClassName: "org.apache.hadoop.security.AccessControlException"}

	if !err.IsClass("AccessControlException") {
		t.Error("bare class name did not match")
	}
	if !err.IsClass("org.apache.hadoop.security.AccessControlException") {
		t.Error("fully qualified class name did not match")
	}
	if err.IsClass("ControlException") {
		t.Error("partial class name matched")
	}
	if err.IsClass("FileNotFoundException") {
		t.Error("unrelated class name matched")
	}
}

func TestRemoteCallErrorMessage(t *testing.T) {
	err := &RemoteCallError{
		ClassName:  "java.io.FileNotFoundException",
		StackTrace: "File /x does not exist.\n\tat org.apache.hadoop...",
	}
	want := "remote error java.io.FileNotFoundException: File /x does not exist."
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err.Fatal = true
	if got := err.Error(); got != "fatal "+want {
		t.Errorf("Error() = %q, want %q", got, "fatal "+want)
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &TransportError{Endpoint: Endpoint{Host: "nn1"}, Op: "read", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("Unwrap did not expose the cause")
	}
}

func TestAllEndpointsUnreachableErrorMessage(t *testing.T) {
	err := &AllEndpointsUnreachableError{
		Failures: []EndpointFailure{
			{Endpoint: Endpoint{Host: "nn1", Port: 8020, Version: 9}, Err: errors.New("refused")},
			{Endpoint: Endpoint{Host: "nn2", Port: 8020, Version: 9}, Err: errors.New("timeout")},
		},
	}
	msg := err.Error()
	for _, want := range []string{"all 2", "nn1:8020", "refused", "nn2:8020", "timeout"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q does not contain %q", msg, want)
		}
	}
}
