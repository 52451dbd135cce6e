// Package battery implements the per-tick battery bookkeeping of the monitor:
//
//   - UI SOC reconciliation: 0%, 100% and n% tracking plus sync-to-real
//   - the charging-safety guard (temperature, charger voltage, call state, safety timer)
//   - moving averages, health, notify codes and the long plug-in voltage cap
//
// Everything is driven by Tick, which takes the previous State and one Reading
// and returns the next State and the Outputs the daemon should apply. Tick has no
// side effects, so the daemon owns all hardware access and locking.
package battery
