package network

import (
	"io"
	"net/http"
	"time"

	"github.com/cargo-build/cargo-sdk-go/types"
)

const DefaultTimeout = time.Second * 30

type Http interface {
	// Get performs req and returns an error for non 2xx responses.
	Get(req *http.Request) ([]byte, error)
	// Do performs req and returns the status code and the body whatever the status.
	Do(req *http.Request) (int, []byte, error)
}

type DefaultHttp struct {
	client *http.Client
}

func NewHttp() Http {
	return &DefaultHttp{
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

func (d *DefaultHttp) Get(req *http.Request) ([]byte, error) {
	status, buf, err := d.Do(req)
	if err != nil {
		return nil, err
	}

	if status < 200 || status >= 300 {
		return nil, types.NewResponseError(status, buf)
	}

	return buf, nil
}

func (d *DefaultHttp) Do(req *http.Request) (int, []byte, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, nil, err
	}

	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)

	return resp.StatusCode, buf, err
}
