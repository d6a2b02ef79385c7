// Package botdb is the configuration and state store of the bot: a single
// long-lived Store wrapping one storage driver (Redis, MongoDB, PostgreSQL,
// an embedded file database or memory) behind an in-process cache of decoded
// values.
//
// Components:
//   - driver.Driver: text key-value backend, one package per technology.
//   - value: tagged Value variant and the literal text codec. Values are
//     persisted as literals (5, True, ['a', 1]) and parsed back lazily;
//     text that is not a literal stays a string.
//   - Store: caching layer. Reads fill the cache (absence included); writes
//     go through the cache to the driver.
//   - selector: picks and opens the driver from configuration at startup.
//
// Construct the Store once and pass it to whoever needs it:
//
//	st, err := selector.Open(ctx, cfg, logger)
//	if err != nil { ... } // fatal at startup
//	defer st.Close(ctx)
//
//	_ = st.SetKey(ctx, "PMSETTING", value.Bool(true))
//	v, ok, err := st.GetKey(ctx, "PMSETTING")
//
// The cache is coherent for a single Store. Other processes writing the same
// backend are not observed until ReCache.
package botdb
