/*
Package resilience provides the circuit breaker guarding calls into a
browser context.

A browser tab that stops answering (suspended, crashed, network gone) makes
every invocation wait for its full timeout. The breaker counts those
transport failures and, once tripped, fails further calls immediately with
ErrCircuitOpen until a trial call succeeds again. Exceptions raised by the
browser-side module are not transport failures: classify them with
Settings.IsFailure so they keep the breaker closed.

	breaker := resilience.New(string(sessionID), resilience.Settings{
		Timeout: 10 * time.Second,
		IsFailure: func(err error) bool {
			var remote *interop.RemoteError
			return err != nil && !errors.As(err, &remote)
		},
	})

	err := breaker.Execute(ctx, func(ctx context.Context) error {
		return peer.Request(ctx, frame)
	})

States:

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                          Open
*/
package resilience
