// @title                       Task Manager API
// @version                     1.0
// @description                 Task management with permission-aware lifecycle, history and deadline reminders.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import "github.com/taskmanager/task-api/cmd"

func main() {
	cmd.Execute()
}
