package util

import "github.com/sjc5/kit/pkg/colorlog"

var Log colorlog.Logger = &colorlog.Log{}
