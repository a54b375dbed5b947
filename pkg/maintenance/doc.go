// Package maintenance schedules periodic upkeep of the catalogue database:
// WAL checkpoints and VACUUM runs, driven by cron expressions from the
// configuration.
package maintenance
