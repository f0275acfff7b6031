package qikink

import (
	"net/http"
	"time"
)

// 一時的なサーバーエラーだけ自動再試行する
var retryStatuses = map[int]bool{
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// retryTransport はトランスポート層の再試行（最大3回、指数バックオフ）。
// 失敗ジョブのアプリ層リトライとは独立した仕組み。
type retryTransport struct {
	base     http.RoundTripper
	maxTries int
	backoff  time.Duration
}

func newRetryTransport(base http.RoundTripper) *retryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &retryTransport{
		base:     base,
		maxTries: 3,
		backoff:  time.Second,
	}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var res *http.Response
	var err error

	wait := t.backoff
	for attempt := 0; attempt < t.maxTries; attempt++ {
		if attempt > 0 {
			// bodyを巻き戻せないリクエストは再送できない
			if req.Body != nil && req.GetBody == nil {
				return res, err
			}
			if req.GetBody != nil {
				body, berr := req.GetBody()
				if berr != nil {
					return res, berr
				}
				req.Body = body
			}

			select {
			case <-time.After(wait):
			case <-req.Context().Done():
				return nil, req.Context().Err()
			}
			wait *= 2
		}

		res, err = t.base.RoundTrip(req)
		if err != nil {
			continue
		}
		if !retryStatuses[res.StatusCode] {
			return res, nil
		}
		// 再試行前にレスポンスを捨てる
		if attempt < t.maxTries-1 {
			res.Body.Close()
		}
	}

	return res, err
}
