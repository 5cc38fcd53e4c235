/*
 * tumblr-import imports posts from a Tumblr JSON archive into a post store.
 * Copyright © 2024 Musing Studio LLC.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */

package tumblrimport

// Stage is a step of an import run.
type Stage int

const (
	StageIdle Stage = iota
	StageReading
	StageValidating
	StageMapping
	StageDryRunReport
	StageWriting
	StageDone
	StageFailed
)

var stageNames = [...]string{"idle", "reading", "validating", "mapping", "dry-run report", "writing", "done", "failed"}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

func (ic *ImportContext) enter(s Stage) {
	ic.Stage = s
	ic.Log.Debugf("Stage: %s", s)
}

// fail moves the run to StageFailed and returns err, remembering the stage
// it failed in.
func (ic *ImportContext) fail(err error) error {
	ic.FailedAt = ic.Stage
	ic.enter(StageFailed)
	return err
}
