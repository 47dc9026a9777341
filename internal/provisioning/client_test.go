package provisioning

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/muurk/wifiprov/internal/credentials"
)

// startPortal runs a portal on a loopback port and returns a client for it
// plus a channel delivering the portal's result.
func startPortal(t *testing.T) (*Client, <-chan *credentials.Credentials) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	srv := New(testConfig())
	if err := srv.Listen(ctx); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })

	result := make(chan *credentials.Credentials, 1)
	go func() {
		creds, _ := srv.Credentials(ctx)
		result <- creds
	}()

	client := NewClientWithURL(fmt.Sprintf("http://%s/", srv.Addr().String()))
	client.RetryDelay = 10 * time.Millisecond
	client.MaxRetries = 1
	return client, result
}

func TestClientPage(t *testing.T) {
	client, _ := startPortal(t)

	page, err := client.Page(context.Background())
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if page != "<form>page</form>" {
		t.Errorf("Page() = %q", page)
	}
}

func TestClientSubmit(t *testing.T) {
	client, result := startPortal(t)

	want, _ := credentials.New("My Net & Co", "p@ss=w%rd+")
	if err := client.Submit(context.Background(), want); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	select {
	case got := <-result:
		if !got.Equal(want) {
			t.Errorf("portal received %v, want %v", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("portal did not return credentials")
	}
}

func TestClientSubmitRejected(t *testing.T) {
	client, _ := startPortal(t)

	err := client.SubmitForm(context.Background(), "ssid=&password=secret123")
	if !IsRejected(err) {
		t.Fatalf("SubmitForm() error = %v, want rejection", err)
	}
	if msg := err.(*ClientError).Message; msg != MsgEmptySSID {
		t.Errorf("rejection message = %q, want %q", msg, MsgEmptySSID)
	}
}

func TestClientUnreachable(t *testing.T) {
	client := NewClient("127.0.0.1", 1)
	client.MaxRetries = 1
	client.RetryDelay = time.Millisecond

	err := client.SubmitForm(context.Background(), "ssid=a&password=b")
	if err == nil {
		t.Fatal("SubmitForm() to closed port should fail")
	}
	if IsRejected(err) {
		t.Error("network failure should not be reported as a rejection")
	}
}
