/*
Package cli provides helpers shared by the texsolve commands.

Output Formatting:

Commands print results as text, JSON or CSV. Tabular results use Table so
each formatter can lay them out:

	table := &cli.Table{Headers: []string{"id", "status"}}
	table.AddRow(rec.ID, rec.Status)
	if err := cli.NewFormatter(cli.FormatCSV).FormatTo(os.Stdout, table); err != nil {
		return err
	}

Progress Reporting:

Batch conversions of several files report progress on stderr:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(int64(len(files)))
	for i, f := range files {
		convert(f)
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Exit Codes:

ExitCode maps command errors to the process status: 0 on success, 2 for
usage and configuration problems, 1 for everything else, including
conversion failures. Message returns the text to print; conversion failures
print only their user-facing message, for example "Error: Missing closing
brace: {2x+3".
*/
package cli
