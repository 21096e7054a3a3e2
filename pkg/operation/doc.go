/*
Package operation runs find/replace pipelines over a batch of inputs.

	+-------------+      +-------------+      +-------------+
	|    input    | ---> |   Runner    | ---> |     txn     |
	|   (items)   |      | (transform) |      |  (staging)  |
	+-------------+      +------+------+      +-------------+
	                            |
	                     +------+------+
	                     |   Report    |
	                     | (per item)  |
	                     +-------------+

🎯 Purpose:
- Applies an ordered list of operations to every input
- Decides whether changes are written, diffed, or only counted
- Records one FileResult per processed input

🔄 Flow:
1. Filter inputs by include/exclude globs
2. Reject empty inputs or empty operation lists
3. Compile every operation before touching any input
4. Per input: read, replace, diff (dry run) or stage (live run)
5. Check policies, then commit or abandon staged files

⚡ Modes:
- Live: modified files are staged and committed at the end
- Dry run: nothing is written, diffs are produced for modified inputs
- Validate only: a dry run that also signals the caller is checking only

🤝 Interfaces:
- Reader: loads file content (FileReader for the local disk)
- Options.Output: receives inline text on live runs
- Options.OnResult: observes results as they are recorded

🔍 Example:

	runner := operation.NewRunner(operation.Options{Output: os.Stdout})
	report, err := runner.Execute(ctx, operation.Pipeline{
		Operations: []operation.Operation{{Find: "foo", With: "bar", Literal: true}},
		DryRun:     true,
	}, []input.Item{input.Path("main.go")})
*/
package operation
