package agent

import "fmt"

// formatUserTask renders the user-task template appended when a new task
// begins.
func formatUserTask(task string) string {
	return fmt.Sprintf("任务: %s\n\n请理解任务并开始执行。", task)
}

// formatObservation renders the Observation template appended after every
// executed command. On success, 输出 carries stdout and 错误 is empty; on
// failure, 输出 falls back to stderr (stdout is often empty for a failed
// command) and 错误 repeats stderr so the model sees the failure reason in
// both places, matching the original's output=stdout-if-success-else-stderr
// and error=""-on-success field mapping.
func formatObservation(command string, success bool, stdout, stderr string) string {
	output := stdout
	errField := ""
	if !success {
		output = stderr
		errField = stderr
	}
	return fmt.Sprintf(
		"上一个命令的执行结果：\n\n命令: %s\n成功: %t\n输出: %s\n错误: %s\n\n请根据这个结果，决定下一步行动。",
		command, success, output, errField,
	)
}

// formatInvalidCommand renders the Observation for a command rejected by
// the Safety Oracle before execution.
func formatInvalidCommand(reason string) string {
	return fmt.Sprintf("命令不合法: %s", reason)
}
