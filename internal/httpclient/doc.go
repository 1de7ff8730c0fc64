// Package httpclient provides HTTP request construction and client setup for
// the littlebot request scheduler.
//
// The bot only ever issues GET requests against a single fixed target, so the
// [RequestBuilder] is deliberately small: it validates the target and the
// configured headers once, up front, and then stamps out identical requests
// for every attempt.
//
//	builder, err := httpclient.NewRequestBuilder(cfg)
//	if err != nil {
//		return err
//	}
//	req, err := builder.Build(ctx)
//
// [NewClient] creates an HTTP client with a tuned transport and connection
// reuse so that repeated requests against the same host do not re-dial:
//
//	client := httpclient.NewClient(30 * time.Second)
//	resp, err := client.Do(req)
package httpclient
