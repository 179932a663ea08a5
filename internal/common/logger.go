package common

import "github.com/sjc5/kit/pkg/colorlog"

type Logger colorlog.Logger
