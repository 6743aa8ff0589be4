// Package job runs the lyric-video asset pipeline for one job folder and
// batches of independent jobs.
//
// A job folder (<jobs_dir>/job_NNN) accumulates one artifact per stage:
//
//	download_audio  audio_full.mp3
//	trim_audio      audio_trimmed.wav
//	cover_art       cover.png        (failure is non-fatal)
//	transcribe      transcript.json
//	sync_lyrics     lyrics.json      (+ reference.txt when reference text exists)
//	beats           beats.json
//	write_job_data  job_data.json
//
// Stages run strictly in order. A stage whose artifact already exists is
// skipped unless the run is forced, so an interrupted job resumes where it
// stopped. The folder is guarded by a file lock for the duration of a run.
package job
