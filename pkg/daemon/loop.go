package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battmon/pkg/battery"
)

var (
	loopInterval            = time.Duration(10) * time.Second
	loopRecorder            = NewTimeSeriesRecorder(60)
	continuousLoopThreshold = 1*time.Minute + 20*time.Second // add 20s to be sure
	chargerPollInterval     = time.Second
)

// TimeSeriesRecorder records the last N monitor tick times.
type TimeSeriesRecorder struct {
	MaxRecordCount int
	LastTickTimes  []time.Time
	mu             *sync.Mutex
}

// NewTimeSeriesRecorder returns a new TimeSeriesRecorder.
func NewTimeSeriesRecorder(maxRecordCount int) *TimeSeriesRecorder {
	return &TimeSeriesRecorder{
		MaxRecordCount: maxRecordCount,
		LastTickTimes:  make([]time.Time, 0),
		mu:             &sync.Mutex{},
	}
}

// AddRecordNow adds a new record with the current time.
func (r *TimeSeriesRecorder) AddRecordNow() {
	r.AddRecord(time.Now())
}

// AddRecord adds a new record.
func (r *TimeSeriesRecorder) AddRecord(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Round to strip monotonic clock reading.
	// This will prevent time.Since from returning values that are not accurate (especially when the system is suspended).
	t = t.Round(0)

	if len(r.LastTickTimes) >= r.MaxRecordCount {
		r.LastTickTimes = r.LastTickTimes[1:]
	}
	r.LastTickTimes = append(r.LastTickTimes, t)
}

// GetRecordsIn returns the number of continuous records in the last duration.
func (r *TimeSeriesRecorder) GetRecordsIn(last time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The last record must be within the last duration.
	if len(r.LastTickTimes) > 0 && time.Since(r.LastTickTimes[len(r.LastTickTimes)-1]) >= loopInterval+time.Second {
		return 0
	}

	// Find continuous records from the end of the list.
	// Continuous records are defined as the time difference between
	// two adjacent records is less than loopInterval+1 second.
	count := 0
	for i := len(r.LastTickTimes) - 1; i >= 0; i-- {
		record := r.LastTickTimes[i]
		if time.Since(record) > last {
			break
		}

		theRecordAfter := record
		if i+1 < len(r.LastTickTimes) {
			theRecordAfter = r.LastTickTimes[i+1]
		}

		if theRecordAfter.Sub(record) >= loopInterval+time.Second {
			break
		}
		count++
	}

	return count
}

// GetLastRecords returns the records in the last duration, newest first.
func (r *TimeSeriesRecorder) GetLastRecords(last time.Duration) []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.LastTickTimes) == 0 {
		return nil
	}

	var records []time.Time
	for i := len(r.LastTickTimes) - 1; i >= 0; i-- {
		record := r.LastTickTimes[i]
		if time.Since(record) > last {
			break
		}
		records = append(records, record)
	}

	return records
}

// GetLastRecord returns the last record.
func (r *TimeSeriesRecorder) GetLastRecord() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.LastTickTimes) == 0 {
		return time.Time{}
	}

	return r.LastTickTimes[len(r.LastTickTimes)-1]
}

func formatRelativeTimes(times []time.Time) []string {
	var timesString []string
	for _, t := range times {
		timesString = append(timesString, time.Since(t).String())
	}
	return timesString
}

// infiniteLoop ticks every loopInterval, or earlier when something asks for
// it through wakeup, until ctx is done.
func infiniteLoop(ctx context.Context) {
	ticker := time.NewTicker(loopInterval)
	defer ticker.Stop()

	for {
		monitorLoop()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-wakeup:
			ticker.Reset(loopInterval)
		}
	}
}

// checkMissedTicks reports whether periodic ticks were skipped since the last
// one, which happens when the system was suspended. Right after start nothing
// has been missed.
func checkMissedTicks() bool {
	lastRecord := loopRecorder.GetLastRecord()
	if lastRecord.IsZero() {
		return false
	}

	tickCount := loopRecorder.GetRecordsIn(continuousLoopThreshold)
	if tickCount == 0 {
		logrus.WithFields(logrus.Fields{
			"lastTick": lastRecord.Format(time.RFC3339),
			"since":    time.Since(lastRecord).String(),
		}).Infof("Possibly missed monitor ticks")
		return true
	}

	expectedTickCount := int(continuousLoopThreshold / loopInterval)
	relativeTimes := loopRecorder.GetLastRecords(continuousLoopThreshold)
	if len(relativeTimes) >= expectedTickCount && tickCount < expectedTickCount-1 {
		logrus.WithFields(logrus.Fields{
			"tickCount":         tickCount,
			"expectedTickCount": expectedTickCount,
			"recentRecords":     formatRelativeTimes(relativeTimes),
		}).Infof("Possibly missed monitor ticks")
		return true
	}
	return false
}

// monitorLoop runs one periodic tick. The previous tick's time is only
// trusted as elapsed time when no ticks were missed.
func monitorLoop() battery.Outputs {
	missed := checkMissedTicks()
	loopRecorder.AddRecordNow()
	return runTick(missed)
}

// monitorLoopForced runs a tick right away. It is mainly called by the HTTP
// APIs after changing state.
func monitorLoopForced() battery.Outputs {
	return runTick(false)
}

// watchCharger polls the charger presence more often than the loop ticks, so
// plug and unplug are acted on within a second.
func watchCharger(ctx context.Context) {
	ticker := time.NewTicker(chargerPollInterval)
	defer ticker.Stop()

	var last *bool
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		online, err := supply.IsChargerOnline()
		if err != nil {
			logrus.Tracef("IsChargerOnline failed: %v", err)
			continue
		}
		if last != nil && *last != online {
			logrus.WithField("online", online).Debug("charger change detected, ticking now")
			requestTick()
		}
		last = &online
	}
}
