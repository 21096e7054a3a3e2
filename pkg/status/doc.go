/*
Package status turns run reports into something people and programs can read.

	            +-------------+
	            |   Report    |
	            | (operation) |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|  Format   |           | Events  |
	| (people)  |           | (JSON)  |
	+-----------+           +---------+

🎯 Purpose:
- Derives a FileStatus for every result
- Formats results and summaries for the console
- Emits the run_start / file / run_end event stream
- Maps a finished run onto an exit code

📝 Event stream:
One JSON object per line. A run always starts with run_start and ends with
run_end; every recorded result produces one file event in between, in input
order. Fields only grow within a SchemaVersion.

🔍 Example:

	em := status.NewEmitter(os.Stdout)
	_ = em.Emit(status.NewRunStart(version, "cli", "args", pipeline))
	for _, res := range report.Results {
		_ = em.Emit(status.NewFileEvent(res))
	}
	_ = em.Emit(status.NewRunEnd(report, err))
*/
package status
