package logging_test

import (
	"bytes"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/srgjo27/railseat/internal/platform/logging"
	"github.com/stretchr/testify/assert"
)

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	helper := log.NewHelper(logging.New(&buf, "railseat", "test", "warn"))

	helper.Infow("msg", "hidden")
	helper.Warnw("msg", "shown", "car", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "car=3")
	assert.Contains(t, out, "service.name=railseat")
}
